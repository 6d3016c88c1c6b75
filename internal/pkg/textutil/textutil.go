// Package textutil provides word-bounded text manipulation shared by the
// scraping and generation paths.
package textutil

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	sentenceSplitRe = regexp.MustCompile(`([.!?])\s+`)
)

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SplitSentences splits text after terminal punctuation followed by whitespace.
// The punctuation stays attached to its sentence.
func SplitSentences(text string) []string {
	marked := sentenceSplitRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitIntoChunks splits text on word boundaries into ordered chunks of at most
// maxWords words each. Empty input yields no chunks.
func SplitIntoChunks(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || maxWords <= 0 {
		return nil
	}
	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// TruncateToWordLimit trims text to at most maxWords words, preferring to cut
// back to the last complete sentence when that keeps at least 60% of the
// budget. The result always ends with terminal punctuation.
func TruncateToWordLimit(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return ensureTerminalPunctuation(strings.TrimSpace(text))
	}

	truncated := strings.Join(words[:maxWords], " ")

	sentences := SplitSentences(truncated)
	if len(sentences) > 1 {
		candidate := strings.Join(sentences[:len(sentences)-1], " ")
		minKeep := maxWords * 6 / 10
		if minKeep < 1 {
			minKeep = 1
		}
		if candidate != "" && WordCount(candidate) >= minKeep {
			truncated = candidate
		}
	}

	return ensureTerminalPunctuation(strings.TrimRight(truncated, " ,;:-"))
}

func ensureTerminalPunctuation(text string) string {
	if text == "" {
		return text
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
		return text
	}
	return text + "."
}
