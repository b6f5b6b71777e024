package pinyin

import "unicode/utf8"

// Greedy splits input in one left-to-right pass, taking the longest rule
// match at each position. It never fails: a character that starts no rule
// is emitted on its own, so concatenating the result always yields input.
func Greedy(input string) []string {
	var out []string
	pos := 0
	for pos < len(input) {
		n := matchAt(input, pos)
		out = append(out, input[pos:pos+n])
		pos += n
	}
	return out
}

// matchAt returns the length of the token starting at pos.
func matchAt(input string, pos int) int {
	rest := input[pos:]

	// Two-letter initials (zh, ch, sh) are reserved tokens on their own.
	if len(rest) >= maxInitialLen && IsInitial(rest[:maxInitialLen]) {
		return maxInitialLen
	}

	for _, f := range finalsByLength {
		if len(f) > len(rest) || rest[:len(f)] != f {
			continue
		}
		if pos == 0 || IsStandaloneFinal(f) {
			return len(f)
		}
	}

	if n := initialFinalAt(rest); n > 0 {
		return n
	}

	_, size := utf8.DecodeRuneInString(rest)
	return size
}

// initialFinalAt finds the longest initial followed by the longest final at
// the start of s and returns their combined length, or 0.
func initialFinalAt(s string) int {
	for il := maxInitialLen; il >= 1; il-- {
		if len(s) < il || !IsInitial(s[:il]) {
			continue
		}
		for fl := maxFinalLen; fl >= 1; fl-- {
			if len(s) < il+fl {
				continue
			}
			if IsFinal(s[il : il+fl]) {
				return il + fl
			}
		}
	}
	return 0
}
