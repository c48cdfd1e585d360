package textmatch

// Similarity scoring for near-duplicate sentences. Uses a
// longest-matching-blocks ratio over runes: the total length of the
// common blocks shared by both strings, scaled to [0, 1]. Cheap enough
// to run per chunk inside the streaming loop, and tracks human
// intuition for "mostly the same sentence with one word swapped"
// better than raw edit distance at high ratios.

// Ratio returns a similarity score in [0.0, 1.0] between a and b.
// Empty input on either side scores 0.0. Identical non-empty strings
// score 1.0. Internal failures degrade to 0.0 so a scoring bug can
// never make deduplication more aggressive.
func Ratio(a, b string) (ratio float64) {
	defer func() {
		if r := recover(); r != nil {
			ratio = 0.0
		}
	}()

	if a == "" || b == "" {
		return 0.0
	}

	ar := []rune(a)
	br := []rune(b)

	matched := matchingTotal(ar, br, 0, len(ar), 0, len(br))
	return 2.0 * float64(matched) / float64(len(ar)+len(br))
}

// matchingTotal sums the lengths of the matching blocks shared by
// a[alo:ahi] and b[blo:bhi]: find the longest common block, then
// recurse on the pieces to its left and right.
func matchingTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	besti, bestj, bestsize := longestMatch(a, b, alo, ahi, blo, bhi)
	if bestsize == 0 {
		return 0
	}

	total := bestsize
	total += matchingTotal(a, b, alo, besti, blo, bestj)
	total += matchingTotal(a, b, besti+bestsize, ahi, bestj+bestsize, bhi)
	return total
}

// longestMatch finds the longest block common to a[alo:ahi] and
// b[blo:bhi], preferring the earliest occurrence in a.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti = i - k + 1
				bestj = j - k + 1
				bestsize = k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}
