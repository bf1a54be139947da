package utils

// Reverse reverses s rune by rune, so multi-byte characters survive intact.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// Prefixes returns every non-empty rune prefix of s, shortest first.
func Prefixes(s string) []string {
	runes := []rune(s)
	out := make([]string, 0, len(runes))
	for i := 1; i <= len(runes); i++ {
		out = append(out, string(runes[:i]))
	}
	return out
}

// LetterIndex maps 'a'..'z' to 0..25 and everything else to -1.
func LetterIndex(r rune) int {
	if r >= 'a' && r <= 'z' {
		return int(r - 'a')
	}
	return -1
}
