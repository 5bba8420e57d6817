// Package inference provides a client for remote vision-language inference.
//
// The package abstracts image analysis behind a single Provider interface,
// enabling seamless switching between any OpenAI-compatible API (OpenAI,
// Ollama, vLLM, Together, and others).
//
// Example usage:
//
//	client, _ := inference.NewClient(
//	    inference.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    inference.WithVisionModel("gpt-4o"),
//	)
//	defer client.Close()
//
//	resp, _ := client.Vision(ctx, &inference.VisionRequest{
//	    Image:  frame,
//	    Prompt: "What do you see?",
//	})
package inference

import (
	"context"
	"image"
)

// Provider is the vision inference interface.
// All implementations must satisfy this interface.
type Provider interface {
	// Vision analyzes an image with a text prompt and returns the full
	// response. Used for single-label calls (scene assessment, page
	// classification).
	Vision(ctx context.Context, req *VisionRequest) (*VisionResponse, error)

	// VisionStream analyzes an image and streams the response text
	// incrementally. Used for page reading, where downstream stages
	// consume text before extraction completes.
	VisionStream(ctx context.Context, req *VisionRequest) (Stream, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Stream is a streaming response for incremental text output.
type Stream interface {
	// Recv returns the next chunk. The final chunk has Done set.
	Recv() (*StreamChunk, error)

	// Close stops the stream and releases resources.
	Close() error
}

// StreamChunk is a piece of a streaming response.
type StreamChunk struct {
	// Delta is the incremental text content.
	Delta string

	// FinishReason indicates why generation stopped (stop, length).
	FinishReason string

	// Done is true when the stream is complete.
	Done bool
}

// VisionRequest for image analysis.
type VisionRequest struct {
	// Image to analyze.
	Image image.Image

	// Prompt is the system instruction describing what to extract.
	Prompt string

	// Text is the user turn accompanying the image. Optional.
	Text string

	// Model overrides the default vision model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}

// VisionResponse from image analysis.
type VisionResponse struct {
	// Content is the natural language response.
	Content string

	// Usage tracks token consumption.
	Usage Usage

	// Model used for analysis.
	Model string

	// LatencyMs is the response time in milliseconds.
	LatencyMs int64
}

// Usage tracks token consumption for billing and limits.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
