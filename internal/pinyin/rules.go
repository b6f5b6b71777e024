// Package pinyin splits concatenated Hanyu Pinyin strings into syllables.
//
// Two independent rule representations back two strategies: the
// initial/final tables drive Greedy, and the flat syllable inventory drives
// Exact. They may disagree on ambiguous input. All tables are built once at
// package initialization and are never mutated, so every function here is
// safe for concurrent use.
package pinyin

import "slices"

var initials = newSet(
	"b", "p", "m", "f", "d", "t", "n", "l", "g", "k", "h",
	"j", "q", "x", "zh", "ch", "sh", "r", "z", "c", "s", "y", "w",
)

// finalsByLength is ordered by descending length for maximal munch.
var finalsByLength = sortedByLength(
	"iang", "iong", "uang", "ueng", "ang", "eng", "ing", "ong",
	"uan", "uai", "iao", "ian", "iu", "ui", "un", "uo", "ua", "ve",
	"ai", "ei", "ao", "ou", "an", "en", "ia", "ie", "in", "er",
	"a", "o", "e", "i", "u", "v",
)

var finals = newSet(finalsByLength...)

// standaloneFinals may open a syllable with no initial. "yi", "wu" and "yu"
// are not finals and never match; they are kept so the table reads as the
// full list of initial-less spellings.
var standaloneFinals = newSet(
	"a", "o", "e", "ai", "ei", "ao", "ou", "an", "en", "ang",
	"eng", "er", "yi", "wu", "yu",
)

const (
	maxInitialLen = 2
	maxFinalLen   = 4
)

// IsInitial reports whether s is a legal syllable-opening consonant cluster.
func IsInitial(s string) bool {
	_, ok := initials[s]
	return ok
}

// IsFinal reports whether s is a legal syllable-ending vowel or nasal cluster.
func IsFinal(s string) bool {
	_, ok := finals[s]
	return ok
}

// IsStandaloneFinal reports whether s may stand as a syllable without an initial.
func IsStandaloneFinal(s string) bool {
	_, ok := standaloneFinals[s]
	return ok
}

// FinalsByLength returns a copy of the finals, longest first.
func FinalsByLength() []string {
	return slices.Clone(finalsByLength)
}

type set map[string]struct{}

func newSet(items ...string) set {
	s := make(set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// sortedByLength returns items ordered by descending length. Equal lengths
// keep their literal order.
func sortedByLength(items ...string) []string {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b string) int {
		return len(b) - len(a)
	})
	return out
}
