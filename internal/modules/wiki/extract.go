package wiki

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wikisum/core/internal/pkg/textutil"
)

// Selectors for chrome that pollutes the prose: infoboxes, navigation boxes,
// reference lists and inline citation markers.
var removalSelectors = []string{
	"table.infobox",
	"table.navbox",
	"table.vertical-navbox",
	"table.sidebar",
	"div.navbox",
	"div.reflist",
	"ol.references",
	"sup.reference",
	"span.reference",
	"style",
	"script",
}

var citationPattern = regexp.MustCompile(`\[\d+\]`)

// ExtractArticleText pulls the readable prose out of a Wikipedia article page.
func ExtractArticleText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse wikipedia page", ErrScrapingFailure)
	}

	content := doc.Find("div#mw-content-text div.mw-parser-output").First()
	if content.Length() == 0 {
		content = doc.Find("div#mw-content-text").First()
	}
	if content.Length() == 0 {
		return "", fmt.Errorf("%w: could not locate article content on the page", ErrScrapingFailure)
	}

	for _, selector := range removalSelectors {
		content.Find(selector).Remove()
	}

	var paragraphs []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			return
		}
		paragraphs = append(paragraphs, text)
	})

	text := strings.Join(paragraphs, " ")
	text = citationPattern.ReplaceAllString(text, "")
	text = textutil.NormalizeWhitespace(text)

	if text == "" {
		return "", fmt.Errorf("%w: article page contained no readable text", ErrScrapingFailure)
	}
	return text, nil
}
