package transcript

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativeTime     = errors.New("negative segment time")
	ErrNonFiniteTime    = errors.New("non-finite segment time")
	ErrInvertedInterval = errors.New("segment ends before it starts")
)

// SegmentError reports which segment failed validation.
type SegmentError struct {
	Index int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %s", e.Index, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// Validate checks that every segment has finite, non-negative times and does
// not end before it starts. The formatters themselves don't validate and pass
// such values through unchanged.
func Validate(segments []Segment) error {
	for i, seg := range segments {
		var err error
		switch {
		case !isFinite(seg.Start) || !isFinite(seg.End):
			err = ErrNonFiniteTime
		case seg.Start < 0 || seg.End < 0:
			err = ErrNegativeTime
		case seg.End < seg.Start:
			err = ErrInvertedInterval
		}
		if err != nil {
			return &SegmentError{Index: i, Err: err}
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
