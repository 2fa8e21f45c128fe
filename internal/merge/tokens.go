package merge

import "strings"

// charsPerToken is the rough character-to-token ratio used throughout
// the budget math. Italian prose averages close to four characters per
// token on the tokenizers the providers use.
const charsPerToken = 4

// EstimateTokens approximates the token count of a text block
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	n := len(s) / charsPerToken
	if n < 1 {
		n = 1
	}
	return n
}

// truncateToTokens cuts content down to approximately the given token
// count, breaking on a word boundary where possible.
func truncateToTokens(content string, tokens int) string {
	limit := tokens * charsPerToken
	if len(content) <= limit {
		return content
	}

	cut := content[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut
}
