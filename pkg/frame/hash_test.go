package frame_test

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/ladybugs/bookbot/pkg/frame"
)

// gradient renders a horizontal luminance ramp; inverted flips its
// direction, which flips every bit of the difference hash.
func gradient(inverted bool) image.Image {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			if inverted {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestHashDistance(t *testing.T) {
	t.Run("identical values", func(t *testing.T) {
		h := frame.Hash(0xDEADBEEF)
		if d := h.Distance(h); d != 0 {
			t.Errorf("distance to self = %d, want 0", d)
		}
		if !h.Same(h) {
			t.Error("hash not Same as itself")
		}
	})

	t.Run("threshold boundary", func(t *testing.T) {
		base := frame.Hash(0)
		within := frame.Hash(0xFF)  // 8 differing bits
		beyond := frame.Hash(0x1FF) // 9 differing bits
		if !base.Same(within) {
			t.Errorf("distance %d should be Same", base.Distance(within))
		}
		if base.Same(beyond) {
			t.Errorf("distance %d should not be Same", base.Distance(beyond))
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := frame.Hash(0xF0F0), frame.Hash(0x0F0F)
		if a.Distance(b) != b.Distance(a) {
			t.Error("distance is not symmetric")
		}
	})
}

func TestHashImage(t *testing.T) {
	t.Run("stable for identical images", func(t *testing.T) {
		h1, err := frame.HashImage(gradient(false))
		if err != nil {
			t.Fatalf("HashImage: %v", err)
		}
		h2, err := frame.HashImage(gradient(false))
		if err != nil {
			t.Fatalf("HashImage: %v", err)
		}
		if h1 != h2 {
			t.Errorf("hashes differ for identical images: %s vs %s", h1, h2)
		}
	})

	t.Run("far apart for opposite images", func(t *testing.T) {
		h1, err := frame.HashImage(gradient(false))
		if err != nil {
			t.Fatalf("HashImage: %v", err)
		}
		h2, err := frame.HashImage(gradient(true))
		if err != nil {
			t.Fatalf("HashImage: %v", err)
		}
		if h1.Same(h2) {
			t.Errorf("opposite gradients hashed Same: distance %d", h1.Distance(h2))
		}
	})
}

func TestNew(t *testing.T) {
	at := time.Now()
	f, err := frame.New(gradient(false), at)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(f.JPEG) == 0 {
		t.Error("JPEG encoding is empty")
	}
	if f.Hash == 0 {
		t.Error("hash not computed")
	}
	if !f.CapturedAt.Equal(at) {
		t.Errorf("CapturedAt = %v, want %v", f.CapturedAt, at)
	}
}
