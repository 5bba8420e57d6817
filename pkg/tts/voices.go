// Package tts voice presets for ElevenLabs.
package tts

// Voices maps friendly preset names to ElevenLabs voice IDs.
// The pipeline alternates between the two reading voices for variety.
var Voices = map[string]string{
	"chantal": "XyeTSqCjJXIeZoB4YnOs", // warm female narrator
	"kwame":   "ohGUGM5CpTBCkBU3BE42", // warm male narrator
}

// Default reading voices, in alternation order.
const (
	DefaultVoiceA = "chantal"
	DefaultVoiceB = "kwame"
)

// ResolveVoice returns the voice ID for a preset name,
// or the input unchanged if it's already a voice ID.
func ResolveVoice(name string) string {
	if id, ok := Voices[name]; ok {
		return id
	}
	return name // Assume it's already a voice ID
}
