package rendering

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	paragraphBreakRegex = regexp.MustCompile(`\n[ \t]*\n`)
	lineBreakTagRegex   = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphEndRegex   = regexp.MustCompile(`(?i)</p\s*>`)
	anyTagRegex         = regexp.MustCompile(`<[^>]+>`)
	blankRunRegex       = regexp.MustCompile(`\n{3,}`)
)

// TextToHTML wraps each blank-line separated paragraph of text in <p>, turning
// single newlines into <br>. Paragraphs are escaped and blank ones are dropped.
func TextToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, para := range paragraphBreakRegex.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		escaped := EscapeHTML(para)
		paragraphs = append(paragraphs, "<p>"+strings.ReplaceAll(escaped, "\n", "<br>")+"</p>")
	}
	return strings.Join(paragraphs, "\n")
}

// HTMLToText is the inverse of TextToHTML: <br> becomes a newline, a closing
// </p> a blank line, and remaining markup is removed with entities decoded.
func HTMLToText(html string) string {
	text := lineBreakTagRegex.ReplaceAllString(html, "\n")
	text = paragraphEndRegex.ReplaceAllString(text, "\n\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		text = anyTagRegex.ReplaceAllString(text, "")
	} else {
		text = doc.Text()
	}

	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
