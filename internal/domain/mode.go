package domain

import "strings"

// Mode selects the segmentation strategy.
type Mode string

const (
	// ModeGreedy segments by maximal munch with no target syllable count.
	ModeGreedy Mode = "greedy"
	// ModeExact partitions the key into exactly as many syllables as the
	// entry has characters.
	ModeExact Mode = "exact"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeGreedy || m == ModeExact
}

func (m Mode) String() string { return string(m) }

// ParseMode converts a case-insensitive string into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", NewValidationError("mode", "must be one of: greedy, exact (got "+s+")")
	}
	return m, nil
}
