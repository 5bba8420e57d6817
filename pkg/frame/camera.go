package frame

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// staleFrames is how many buffered frames to discard before each read so a
// capture reflects the scene now, not when the driver last filled its queue.
const staleFrames = 3

// warmup gives the sensor time to auto-expose after opening.
const warmup = 500 * time.Millisecond

// Camera captures frames from a local video device via OpenCV.
type Camera struct {
	index int

	mu  sync.Mutex
	cap *gocv.VideoCapture
}

// NewCamera creates a camera source for the given device index.
func NewCamera(index int) *Camera {
	return &Camera{index: index}
}

// Start opens the video device and lets it warm up.
func (c *Camera) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cap, err := gocv.OpenVideoCapture(c.index)
	if err != nil {
		return fmt.Errorf("frame: open camera %d: %w", c.index, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return fmt.Errorf("frame: camera %d did not open", c.index)
	}

	c.cap = cap
	time.Sleep(warmup)
	return nil
}

// Stop releases the video device.
func (c *Camera) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap == nil {
		return nil
	}
	err := c.cap.Close()
	c.cap = nil
	return err
}

// Capture flushes stale buffered frames, then reads and decodes one frame.
func (c *Camera) Capture(ctx context.Context) (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap == nil {
		return nil, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.cap.Grab(staleFrames)

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := c.cap.Read(&mat); !ok || mat.Empty() {
		return nil, fmt.Errorf("frame: read from camera %d failed", c.index)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("frame: decode camera frame: %w", err)
	}

	return New(img, time.Now())
}

var _ Source = (*Camera)(nil)
