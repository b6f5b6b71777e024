package pinyin

import (
	"fmt"

	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

// DefaultMaxInputLen bounds the keys SegmentExact accepts.
const DefaultMaxInputLen = 64

// Segmenter reports Greedy and Exact results as domain errors and bounds
// the input of the exact search. Greedy is a single linear pass and is never
// bounded. The zero value uses DefaultMaxInputLen.
type Segmenter struct {
	MaxInputLen int
}

// NewSegmenter creates a Segmenter. maxInputLen <= 0 selects DefaultMaxInputLen.
func NewSegmenter(maxInputLen int) *Segmenter {
	return &Segmenter{MaxInputLen: maxInputLen}
}

func (s *Segmenter) limit() int {
	if s == nil || s.MaxInputLen <= 0 {
		return DefaultMaxInputLen
	}
	return s.MaxInputLen
}

// SegmentGreedy returns the greedy split of input. It never fails; the error
// result keeps the signature in line with SegmentExact.
func (s *Segmenter) SegmentGreedy(input string) ([]string, error) {
	return Greedy(input), nil
}

// SegmentExact splits input into exactly count syllables. Inputs longer than
// MaxInputLen fail with domain.ErrInputTooLong.
func (s *Segmenter) SegmentExact(input string, count int) ([]string, error) {
	if len(input) > s.limit() {
		return nil, fmt.Errorf("segment %q: %w (%d > %d)", input, domain.ErrInputTooLong, len(input), s.limit())
	}
	out, ok := Exact(input, count)
	if !ok {
		return nil, fmt.Errorf("segment %q into %d: %w", input, count, domain.ErrNoSegmentation)
	}
	return out, nil
}

// Segment dispatches on mode. count is ignored in greedy mode.
func (s *Segmenter) Segment(input string, count int, mode domain.Mode) ([]string, error) {
	switch mode {
	case domain.ModeGreedy:
		return s.SegmentGreedy(input)
	case domain.ModeExact:
		return s.SegmentExact(input, count)
	default:
		return nil, domain.NewValidationError("mode", "unknown mode "+mode.String())
	}
}
