package dataprocessing

import (
	"errors"
	"fmt"

	"regionstats/internal/frame"
)

// Mode selects the administrative level at which datasets are merged.
type Mode string

const (
	// ModePowiat joins on (Voivodeship, Powiat).
	ModePowiat Mode = "Powiat"
	// ModeVoivodeship sums each dataset per voivodeship and joins on Voivodeship.
	ModeVoivodeship Mode = "Voivodeship"
)

var (
	// ErrInvalidMode is returned for a mode other than ModePowiat or ModeVoivodeship.
	ErrInvalidMode = errors.New("invalid merge mode")
	// ErrNoFrames is returned when there is nothing to merge.
	ErrNoFrames = errors.New("no frames to merge")
)

// ParseMode accepts "powiat" or "voivodeship" in any letter case.
func ParseMode(s string) (Mode, error) {
	switch foldHeader(s) {
	case "powiat":
		return ModePowiat, nil
	case "voivodeship":
		return ModeVoivodeship, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Keys returns the join columns of the mode.
func (m Mode) Keys() []string {
	if m == ModePowiat {
		return []string{ColVoivodeship, ColPowiat}
	}
	return []string{ColVoivodeship}
}

func (m Mode) valid() bool {
	return m == ModePowiat || m == ModeVoivodeship
}

// MergeFrames full-outer-joins frames left to right on the keys of mode.
// In ModeVoivodeship each frame is first summed per voivodeship, dropping
// its non-numeric columns. A lone frame is returned as is in ModePowiat.
// The input frames are never modified.
func MergeFrames(frames []*frame.Frame, mode Mode) (*frame.Frame, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	parts := frames
	if mode == ModeVoivodeship {
		parts = make([]*frame.Frame, len(frames))
		for i, f := range frames {
			summed, err := f.GroupBySum(ColVoivodeship)
			if err != nil {
				return nil, fmt.Errorf("sum frame %d by voivodeship: %w", i, err)
			}
			parts[i] = summed
		}
	}

	merged := parts[0]
	for i, next := range parts[1:] {
		var err error
		merged, err = merged.OuterMerge(next, mode.Keys()...)
		if err != nil {
			return nil, fmt.Errorf("merge frame %d by %s: %w", i+1, mode, err)
		}
	}
	return merged, nil
}
