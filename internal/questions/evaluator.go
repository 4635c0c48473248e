package questions

import (
	"sort"
	"strings"
	"unicode"
)

// NormalizeAnswer uppercases the answer and reduces it to a sorted set of
// letters. Whitespace and separators are dropped, so "c, a" and "AC" agree.
func NormalizeAnswer(answer string) string {
	seen := make(map[rune]bool, len(answer))
	var letters []rune
	for _, r := range strings.ToUpper(answer) {
		if unicode.IsSpace(r) || r == ',' || r == ';' || r == '/' {
			continue
		}
		if !seen[r] {
			seen[r] = true
			letters = append(letters, r)
		}
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters)
}

// IsCorrect compares the submitted letter set to the correct letter set.
// Multi-choice answers get no partial credit, and an empty answer only
// matches an empty key.
func IsCorrect(userAnswer, correctAnswer string) bool {
	return NormalizeAnswer(userAnswer) == NormalizeAnswer(correctAnswer)
}
