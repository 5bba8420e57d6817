package frame

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/corona10/goimagehash"
)

// SameThreshold is the maximum Hamming distance (out of 64 bits) at which
// two frames are considered the same page. dHash of near-duplicate frames
// under sensor noise stays within a handful of bits, while a physical page
// turn moves the fingerprint by 20+ bits; 8 sits comfortably between.
const SameThreshold = 8

// Hash is a 64-bit perceptual fingerprint of a frame (difference hash).
// Used only for pre/post-turn equality checks, never persisted.
type Hash uint64

// HashImage computes the perceptual hash of an image.
func HashImage(img image.Image) (Hash, error) {
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return 0, fmt.Errorf("frame: hash: %w", err)
	}
	return Hash(h.GetHash()), nil
}

// Distance returns the Hamming distance between two hashes.
func (h Hash) Distance(o Hash) int {
	return bits.OnesCount64(uint64(h) ^ uint64(o))
}

// Same reports whether two frames show the same page.
func (h Hash) Same(o Hash) bool {
	return h.Distance(o) <= SameThreshold
}

// String returns the hash as fixed-width hex for logs.
func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}
