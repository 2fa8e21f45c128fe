package merge

import "strings"

// contentSimilarity computes token-set overlap (Jaccard) between two
// content blocks. Used to suppress near-duplicate parts before the
// budget pass so redundant text never eats budget a distinct part
// could have used.
func contentSimilarity(a, b string) float64 {
	as := contentTokens(a)
	bs := contentTokens(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}

	intersection := 0
	for tok := range as {
		if bs[tok] {
			intersection++
		}
	}
	union := len(as) + len(bs) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func contentTokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,;:!?()[]\"'")
		if len(tok) < 3 {
			continue
		}
		set[tok] = true
	}
	return set
}
