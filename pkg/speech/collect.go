package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Collect drains a text stream into a Unit without synthesis or playback.
// Used for silent runs and anywhere the segmented text is wanted on its own.
func Collect(ctx context.Context, in FragmentStream) (*Unit, error) {
	unit := NewUnit()
	seg := &segmenter{}

	for {
		if err := ctx.Err(); err != nil {
			return unit, err
		}

		delta, err := in.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return unit, fmt.Errorf("speech: text stream: %w", err)
		}
		if delta == "" {
			continue
		}

		unit.appendFragment(delta)
		for _, s := range seg.feed(delta) {
			unit.appendSentence(s)
		}
	}

	if s, ok := seg.flush(); ok {
		unit.appendSentence(s)
	}
	return unit, nil
}
