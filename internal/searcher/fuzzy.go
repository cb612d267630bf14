package searcher

// PartialRatio scores how well the shorter of a and b aligns with its best
// matching window in the longer one, in [0, 100]. Every window has the
// length of the shorter string; each is scored with the normalized Indel
// similarity, which for equal lengths reduces to LCS / length.
//
// An exact substring scores 100 and strings with no common characters score
// 0. Two empty strings score 100; one empty string scores 0. Comparison is
// by rune and case-sensitive, so callers lowercase beforehand.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}

	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	m := len(short)
	prev := make([]int, m+1)
	curr := make([]int, m+1)

	inShort := make(map[rune]struct{}, m)
	for _, r := range short {
		inShort[r] = struct{}{}
	}

	best := 0
	last := len(long) - m
	for start := 0; start <= last; start++ {
		// A window opening with a rune absent from short scores no higher
		// than the window after it.
		if _, ok := inShort[long[start]]; !ok && start < last {
			continue
		}

		lcs := lcsLength(short, long[start:start+m], prev, curr)
		if lcs > best {
			best = lcs
			if best == m {
				break
			}
		}
	}

	return 100 * float64(best) / float64(m)
}

// lcsLength returns the length of the longest common subsequence of a and b.
// prev and curr are scratch rows of len(a)+1.
func lcsLength(a, b []rune, prev, curr []int) int {
	for i := range prev {
		prev[i] = 0
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = 0
		for i := 1; i <= len(a); i++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[i] = prev[i-1] + 1
			case prev[i] >= curr[i-1]:
				curr[i] = prev[i]
			default:
				curr[i] = curr[i-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(a)]
}
