package frame

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Folder replays a directory of images in sorted filename order, standing in
// for the camera during hardware-free runs. Once the images are exhausted the
// last one is served repeatedly, so a session script can park the scene on
// its final state.
type Folder struct {
	dir    string
	logger *slog.Logger

	files []string
	next  int
}

// NewFolder creates a replay source for the given directory.
func NewFolder(dir string, logger *slog.Logger) *Folder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Folder{dir: dir, logger: logger.With("component", "frame.folder")}
}

// Start scans the directory for images.
func (f *Folder) Start() error {
	var files []string
	for _, pat := range []string{"*.jpg", "*.jpeg", "*.png"} {
		matches, err := filepath.Glob(filepath.Join(f.dir, pat))
		if err != nil {
			return fmt.Errorf("frame: scan %s: %w", f.dir, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	if len(files) == 0 {
		return fmt.Errorf("frame: no images in %s: %w", f.dir, ErrNoFrames)
	}

	f.files = files
	f.next = 0
	f.logger.Info("loaded replay images", "dir", f.dir, "count", len(files))
	return nil
}

// Stop is a no-op for folder sources.
func (f *Folder) Stop() error { return nil }

// Capture serves the next image, clamping to the last once exhausted.
func (f *Folder) Capture(ctx context.Context) (*Frame, error) {
	if len(f.files) == 0 {
		return nil, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := f.next
	if idx >= len(f.files) {
		idx = len(f.files) - 1
	}
	f.next++

	path := f.files[idx]
	f.logger.Debug("serving replay image",
		"index", idx+1,
		"total", len(f.files),
		"file", filepath.Base(path),
	)

	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return New(img, time.Now())
}

// Still serves a single image file on every capture, for one-shot testing
// without a camera.
type Still struct {
	path string
	img  image.Image
}

// NewStill creates a source that always serves the image at path.
func NewStill(path string) *Still {
	return &Still{path: path}
}

// Start loads and decodes the image.
func (s *Still) Start() error {
	img, err := loadImage(s.path)
	if err != nil {
		return err
	}
	s.img = img
	return nil
}

// Stop is a no-op for still sources.
func (s *Still) Stop() error { return nil }

// Capture returns a frame of the loaded image.
func (s *Still) Capture(ctx context.Context) (*Frame, error) {
	if s.img == nil {
		return nil, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return New(s.img, time.Now())
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("frame: open %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("frame: decode %s: %w", path, err)
	}
	return img, nil
}

var (
	_ Source = (*Folder)(nil)
	_ Source = (*Still)(nil)
)
