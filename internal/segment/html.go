package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagPattern = regexp.MustCompile(`(?i)<(p|div|br|li|ul|ol|h[1-6]|span|strong|b|em|section|article|body|html|table|tr|td)[\s>/]`)

// blockTags end a line of text when flattened.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "tr": true, "blockquote": true, "pre": true,
}

// skippedTags never contribute text.
var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true, "template": true, "#comment": true,
}

// LooksLikeHTML reports whether the text appears to be HTML markup rather than plain text.
func LooksLikeHTML(text string) bool {
	return htmlTagPattern.MatchString(text)
}

// HTMLToText flattens HTML into plain text. Block elements start new lines,
// list items become "- " bullets and headings sit on their own line.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	writeText(&sb, doc.Selection)
	return Normalize(sb.String()), nil
}

func writeText(sb *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			sb.WriteString(c.Text())
			return
		case skippedTags[name]:
			return
		case name == "br":
			sb.WriteString("\n")
			return
		case name == "li":
			sb.WriteString("\n- ")
			writeText(sb, c)
			sb.WriteString("\n")
			return
		}

		if blockTags[name] {
			sb.WriteString("\n")
		}
		writeText(sb, c)
		if blockTags[name] {
			sb.WriteString("\n")
		}
	})
}
