package ai

import (
	"regexp"
	"strings"
)

// Portuguese function words used to detect summaries that are already in
// Portuguese, so a translation round-trip can be skipped.
var portugueseStopwords = map[string]struct{}{
	"o": {}, "a": {}, "os": {}, "as": {}, "um": {}, "uma": {},
	"de": {}, "do": {}, "da": {}, "dos": {}, "das": {},
	"em": {}, "no": {}, "na": {}, "nos": {}, "nas": {},
	"por": {}, "para": {}, "com": {}, "sem": {}, "sobre": {},
	"que": {}, "não": {}, "mais": {}, "como": {}, "foi": {},
	"ser": {}, "são": {}, "está": {}, "também": {},
	"seu": {}, "sua": {}, "seus": {}, "suas": {}, "entre": {},
	"ao": {}, "aos": {}, "à": {}, "às": {}, "pelo": {}, "pela": {},
	"é": {}, "e": {}, "ou": {}, "mas": {}, "se": {}, "já": {},
}

var portugueseWordPattern = regexp.MustCompile(`[a-záàâãéêíóôõúç]+`)

// LooksPortuguese reports whether the text is likely already Portuguese.
// Short texts never match: the heuristic needs enough words to be meaningful.
func LooksPortuguese(text string) bool {
	if len(text) < 40 {
		return false
	}

	words := portugueseWordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) < 5 {
		return false
	}

	hits := 0
	for _, w := range words {
		if _, ok := portugueseStopwords[w]; ok {
			hits++
		}
	}
	if hits < 3 {
		return false
	}
	return float64(hits)/float64(len(words)) >= 0.08
}
