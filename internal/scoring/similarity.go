package scoring

// Levenshtein returns the edit distance between a and b counted in runes.
// The table has len(b)+1 rows and len(a)+1 columns.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	dp := make([][]int, len(rb)+1)
	for i := range dp {
		dp[i] = make([]int, len(ra)+1)
		dp[i][0] = i
	}
	for j := 0; j <= len(ra); j++ {
		dp[0][j] = j
	}

	for i := 1; i <= len(rb); i++ {
		for j := 1; j <= len(ra); j++ {
			cost := 0
			if rb[i-1] != ra[j-1] {
				cost = 1
			}
			sub := dp[i-1][j-1] + cost
			ins := dp[i][j-1] + 1
			del := dp[i-1][j] + 1
			dp[i][j] = min(sub, ins, del)
		}
	}
	return dp[len(rb)][len(ra)]
}

// Similarity returns (maxLen - distance) / maxLen in [0,1]. Two empty
// strings are identical.
func Similarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return float64(maxLen-Levenshtein(a, b)) / float64(maxLen)
}
