package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Line is one parsed line of a source dictionary: a concatenated pinyin key
// followed by the entries that share it.
type Line struct {
	Number  int
	Key     string
	Entries []string
}

// Record is a single output row: one entry with the syllabification of its key.
type Record struct {
	ID        uuid.UUID
	RunID     uuid.UUID
	Line      int
	Key       string
	Entry     string
	Syllables []string
	Weight    int
	Mode      Mode
	// Segmented is false when the active strategy produced no segmentation.
	Segmented bool
	// Fallback is true when an exact segmentation failed and the greedy
	// result was used instead.
	Fallback  bool
	CreatedAt time.Time
}

// Pinyin returns the syllables joined by single spaces, or "" when the
// record was not segmented.
func (r Record) Pinyin() string {
	if !r.Segmented {
		return ""
	}
	return strings.Join(r.Syllables, " ")
}
