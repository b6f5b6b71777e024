package pinyin

// Exact partitions input into exactly k valid syllables. It reports false
// when no such partition exists.
//
// When several partitions exist the result is the one an exhaustive
// depth-first search, trying longer first syllables before shorter ones,
// would find last. That is the partition whose first syllable is the
// shortest one with a solvable remainder, applied recursively. The search
// memoizes the winning prefix per (offset, remaining count), so it runs in
// O(len(input) * k * MaxSyllableLen).
func Exact(input string, k int) ([]string, bool) {
	if input == "" || k <= 0 || k > len(input) {
		return nil, false
	}

	s := &exactSearch{
		input: input,
		k:     k,
		memo:  make([]int8, (len(input)+1)*(k+1)),
	}
	if s.solve(0, k) <= 0 {
		return nil, false
	}

	out := make([]string, 0, k)
	off := 0
	for parts := k; parts > 0; parts-- {
		n := s.solve(off, parts)
		out = append(out, input[off:off+n])
		off += n
	}
	return out, true
}

const (
	memoUnknown int8 = 0
	memoNone    int8 = -1
)

type exactSearch struct {
	input string
	k     int
	// memo holds the winning prefix length per (offset, parts); memoUnknown
	// means not computed yet and memoNone means unsolvable.
	memo []int8
}

// solve returns the length of the winning first syllable for
// input[off:] split into parts syllables, or memoNone.
func (s *exactSearch) solve(off, parts int) int {
	idx := off*(s.k+1) + parts
	if v := s.memo[idx]; v != memoUnknown {
		return int(v)
	}

	best := int(memoNone)
	remaining := len(s.input) - off
	switch {
	case remaining == 0 || parts == 0:
	case parts == 1:
		if IsValidSyllable(s.input[off:]) {
			best = remaining
		}
	default:
		limit := min(remaining-(parts-1), MaxSyllableLen)
		for n := 1; n <= limit; n++ {
			if !IsValidSyllable(s.input[off : off+n]) {
				continue
			}
			if s.solve(off+n, parts-1) > 0 {
				best = n
				break
			}
		}
	}

	s.memo[idx] = int8(best)
	return best
}
