// Package text provides text helpers shared by the summarizer server and the
// helper binary: rune counting, summary cleanup and credential redaction.
package text

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Multi-byte characters count once each.
//
// Examples:
//
//	CountRunes("hello")      // returns 5
//	CountRunes("こんにちは") // returns 5
//	CountRunes("")           // returns 0
func CountRunes(text string) int {
	return len([]rune(text))
}
