package richtext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespace = regexp.MustCompile(`\s+`)

// PlainText renders a comment or advice cell as plain text. Cells exported
// from the audit tool sometimes carry HTML; block elements become line
// breaks and scripts and styles are dropped. Plain cells pass through with
// whitespace collapsed.
func PlainText(cell string) string {
	if !strings.Contains(cell, "<") {
		return collapse(cell)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
	if err != nil {
		return collapse(cell)
	}

	doc.Find("script, style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	doc.Find("br").Each(func(i int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})
	doc.Find("p, li, div, h1, h2, h3, h4, tr").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if l := collapse(line); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

// Links returns the href of every anchor in cell, in document order.
func Links(cell string) []string {
	if !strings.Contains(cell, "<") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
	if err != nil {
		return nil
	}
	var links []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			links = append(links, strings.TrimSpace(href))
		}
	})
	return links
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
