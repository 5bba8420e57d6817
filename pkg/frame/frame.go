// Package frame provides timestamped image frames for the reading loop.
//
// A Source is a single shared, stateful stream: only one caller drives
// capture, and every capture reflects the scene at the moment of the call,
// never a stale buffered image. Implementations cover a live camera,
// folder replay for hardware-free runs, and a single still image.
package frame

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"time"
)

// Sentinel errors returned by sources.
var (
	// ErrNotStarted is returned when capturing from a source before Start.
	ErrNotStarted = errors.New("frame: source not started")

	// ErrNoFrames is returned when a source has nothing to serve.
	ErrNoFrames = errors.New("frame: no frames available")
)

// Frame is one captured image plus the metadata the orchestrator needs.
type Frame struct {
	// Image is the decoded frame.
	Image image.Image

	// JPEG is the encoded frame, ready for remote inference or archival.
	JPEG []byte

	// Hash is the perceptual fingerprint computed at capture time.
	Hash Hash

	// CapturedAt is when the frame was taken.
	CapturedAt time.Time
}

// Source supplies frames on demand.
type Source interface {
	// Start opens the underlying stream.
	Start() error

	// Stop releases the underlying stream.
	Stop() error

	// Capture returns a fresh frame. Implementations must discard any
	// internally buffered stale frames before reading.
	Capture(ctx context.Context) (*Frame, error)
}

// New builds a Frame from a decoded image, encoding JPEG and computing
// the perceptual hash.
func New(img image.Image, at time.Time) (*Frame, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}

	h, err := HashImage(img)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Image:      img,
		JPEG:       buf.Bytes(),
		Hash:       h,
		CapturedAt: at,
	}, nil
}

// jpegQuality matches the camera pipeline's encode quality.
const jpegQuality = 85
