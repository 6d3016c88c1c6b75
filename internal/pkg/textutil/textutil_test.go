package textutil

import (
	"strings"
	"testing"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses runs", "a  b\t\tc\n\nd", "a b c d"},
		{"trims edges", "  hello world  ", "hello world"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tt.in); got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"two words", 2},
		{"  padded   words  here ", 3},
	}
	for _, tt := range tests {
		if got := WordCount(tt.in); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First one. Second one! Third? Trailing")
	want := []string{"First one.", "Second one!", "Third?", "Trailing"}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitIntoChunks(t *testing.T) {
	words := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		words = append(words, "w")
	}
	text := strings.Join(words, " ")

	chunks := SplitIntoChunks(text, 10)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		if n := WordCount(chunk); n > 10 {
			t.Errorf("chunk %d has %d words, want <= 10", i, n)
		}
	}
	if WordCount(chunks[2]) != 5 {
		t.Errorf("last chunk has %d words, want 5", WordCount(chunks[2]))
	}

	if got := SplitIntoChunks("", 10); got != nil {
		t.Errorf("empty input produced %v, want nil", got)
	}
}

func TestSplitIntoChunksPreservesOrder(t *testing.T) {
	text := "one two three four five six"
	chunks := SplitIntoChunks(text, 2)
	if joined := strings.Join(chunks, " "); joined != text {
		t.Errorf("rejoined chunks = %q, want %q", joined, text)
	}
}

func TestTruncateToWordLimit(t *testing.T) {
	t.Run("short text kept", func(t *testing.T) {
		got := TruncateToWordLimit("A short sentence.", 50)
		if got != "A short sentence." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("short text gains punctuation", func(t *testing.T) {
		got := TruncateToWordLimit("no punctuation here", 50)
		if got != "no punctuation here." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("cuts at sentence boundary", func(t *testing.T) {
		// Nine words in the first sentence, limit 10 lands mid second sentence.
		text := "One two three four five six seven eight nine. Ten eleven twelve thirteen."
		got := TruncateToWordLimit(text, 10)
		if got != "One two three four five six seven eight nine." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("hard cut when sentence boundary too early", func(t *testing.T) {
		// First sentence is 2 of 10 budget words, below the 60% floor.
		text := "Aa bb. One two three four five six seven eight nine ten eleven"
		got := TruncateToWordLimit(text, 10)
		if n := WordCount(got); n > 10 {
			t.Errorf("result has %d words, want <= 10", n)
		}
		if !strings.HasSuffix(got, ".") {
			t.Errorf("result %q lacks terminal punctuation", got)
		}
	})

	t.Run("strips dangling separators", func(t *testing.T) {
		text := "word word word word word, and then some more words beyond"
		got := TruncateToWordLimit(text, 5)
		if strings.HasSuffix(strings.TrimSuffix(got, "."), ",") {
			t.Errorf("result %q kept a trailing separator", got)
		}
	})

	t.Run("never exceeds the limit", func(t *testing.T) {
		long := strings.Repeat("word ", 300)
		for _, limit := range []int{1, 5, 50, 299} {
			got := TruncateToWordLimit(long, limit)
			if n := WordCount(got); n > limit {
				t.Errorf("limit %d produced %d words", limit, n)
			}
		}
	})
}
