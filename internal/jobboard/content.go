package jobboard

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "table": true, "section": true, "blockquote": true,
}

// ContentText converts job content to plain text. The Job Board API returns
// content HTML-escaped, so it is unescaped before parsing. List items are
// prefixed with "- " and blank lines are collapsed.
func ContentText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html.UnescapeString(content)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	writeText(&b, doc.Find("body"))
	return tidy(b.String()), nil
}

func writeText(b *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, node *goquery.Selection) {
		name := goquery.NodeName(node)
		switch name {
		case "#text":
			b.WriteString(node.Text())
			return
		case "br":
			b.WriteString("\n")
			return
		case "script", "style", "#comment":
			return
		case "li":
			b.WriteString("\n- ")
		}
		writeText(b, node)
		if blockElements[name] {
			b.WriteString("\n")
		}
	})
}

func tidy(s string) string {
	var lines []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(lines) > 0 {
				blank = true
			}
			continue
		}
		if blank && !strings.HasPrefix(line, "- ") {
			lines = append(lines, "")
		}
		blank = false
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
