// Bookbot - autonomous book reading robot.
// Watches the table through a camera, opens the book, reads each spread
// aloud with alternating voices, and turns pages until the book is done.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ladybugs/bookbot/internal/log"
	"github.com/ladybugs/bookbot/pkg/archive"
	"github.com/ladybugs/bookbot/pkg/audio"
	"github.com/ladybugs/bookbot/pkg/frame"
	"github.com/ladybugs/bookbot/pkg/inference"
	"github.com/ladybugs/bookbot/pkg/motor"
	"github.com/ladybugs/bookbot/pkg/orchestrator"
	"github.com/ladybugs/bookbot/pkg/perception"
	"github.com/ladybugs/bookbot/pkg/speech"
	"github.com/ladybugs/bookbot/pkg/tts"
)

type options struct {
	source     string
	folder     string
	image      string
	camera     int
	mode       string
	silent     bool
	archiveDir string
	bookID     string
	maxCycles  int
	logLevel   string
}

func main() {
	opts := parseFlags()
	godotenv.Load()
	log.Init(opts.logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		log.Error("bookbot failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.source, "source", "live", "Frame source: live, folder, or image")
	flag.StringVar(&opts.folder, "folder", "", "Directory of page images (source=folder)")
	flag.StringVar(&opts.image, "image", "", "Single page image (source=image)")
	flag.IntVar(&opts.camera, "camera", 0, "Camera index (source=live)")
	flag.StringVar(&opts.mode, "mode", "verbose", "Reading mode: verbose or skim")
	flag.BoolVar(&opts.silent, "silent", false, "Extract text without speaking")
	flag.StringVar(&opts.archiveDir, "archive", "", "Archive sessions under this directory")
	flag.StringVar(&opts.bookID, "book", "", "Book identifier for the session record")
	flag.IntVar(&opts.maxCycles, "max-cycles", 0, "Override the cycle watchdog bound")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()
	return opts
}

func run(ctx context.Context, opts options) error {
	source, err := newSource(opts)
	if err != nil {
		return err
	}
	if err := source.Start(); err != nil {
		return fmt.Errorf("start frame source: %w", err)
	}
	defer source.Stop()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	provider, err := inference.NewClient(
		inference.WithAPIKey(apiKey),
		inference.WithLogger(log.L()),
	)
	if err != nil {
		return fmt.Errorf("inference client: %w", err)
	}
	defer provider.Close()

	pipeline, err := newPipeline(opts)
	if err != nil {
		return err
	}

	skills := perception.NewSkills(provider, pipeline, log.L())

	mode := perception.ModeVerbose
	if opts.mode == string(perception.ModeSkim) {
		mode = perception.ModeSkim
	}

	runner := motor.AutoRunner(motor.SoloConfig{}, log.L())
	executor := motor.NewExecutor(runner, motor.Config{Logger: log.L()})

	var observers []orchestrator.Observer
	if opts.archiveDir != "" {
		observers = append(observers, archive.New(opts.archiveDir, log.L()))
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Source:    source,
		Skills:    skills,
		Motor:     executor,
		BookID:    opts.bookID,
		Mode:      mode,
		MaxCycles: opts.maxCycles,
		Observers: observers,
		Logger:    log.L(),
	})
	if err != nil {
		return err
	}

	sess, err := orch.Run(ctx)
	if sess != nil {
		printSummary(sess)
	}
	return err
}

func newSource(opts options) (frame.Source, error) {
	switch opts.source {
	case "live":
		return frame.NewCamera(opts.camera), nil
	case "folder":
		if opts.folder == "" {
			return nil, fmt.Errorf("source=folder requires -folder")
		}
		return frame.NewFolder(opts.folder, log.L()), nil
	case "image":
		if opts.image == "" {
			return nil, fmt.Errorf("source=image requires -image")
		}
		return frame.NewStill(opts.image), nil
	default:
		return nil, fmt.Errorf("unknown source %q", opts.source)
	}
}

// newPipeline builds the speech pipeline with two alternating voices, or
// returns nil in silent mode.
func newPipeline(opts options) (*speech.Pipeline, error) {
	if opts.silent {
		return nil, nil
	}

	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is required unless -silent is set")
	}

	voiceNames := []string{tts.DefaultVoiceA, tts.DefaultVoiceB}
	voices := make([]tts.Provider, 0, len(voiceNames))
	for _, name := range voiceNames {
		v, err := tts.NewElevenLabs(
			tts.WithAPIKey(apiKey),
			tts.WithVoice(tts.ResolveVoice(name)),
			tts.WithLogger(log.L()),
		)
		if err != nil {
			return nil, fmt.Errorf("tts voice %s: %w", name, err)
		}
		voices = append(voices, v)
	}

	sink, err := audio.NewExecSink(log.L())
	if err != nil {
		return nil, fmt.Errorf("audio sink: %w", err)
	}

	return speech.New(speech.Config{
		Voices: voices,
		Sink:   sink,
		Logger: log.L(),
	})
}

func printSummary(s *orchestrator.Session) {
	fmt.Printf("\nsession %s: %s", s.ID, s.Outcome)
	if s.Reason != "" {
		fmt.Printf(" (%s)", s.Reason)
	}
	fmt.Printf("\ncycles: %d  pages read: %d  duration: %s\n",
		len(s.Cycles), s.PagesRead(), s.Duration().Round(time.Second))
}
