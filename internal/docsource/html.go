package docsource

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLReader extracts readable text from an HTML document, dropping
// script/style/nav noise and keeping block structure as line breaks so
// the chunker still sees paragraph boundaries.
type HTMLReader struct{}

func (h *HTMLReader) Extract(_ context.Context, path string) (string, error) {
	raw, err := readFile(path)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var blocks []string
	root.Find("h1, h2, h3, h4, h5, h6, p, li, td, th, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		// skip containers whose text is already covered by a nested block
		if s.Find("p, li").Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		// no block elements, fall back to the whole text
		return strings.Join(strings.Fields(root.Text()), " "), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}
