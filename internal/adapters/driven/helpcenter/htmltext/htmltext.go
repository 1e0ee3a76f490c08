// Package htmltext converts help-center HTML article bodies into the
// plain text or Markdown the analysis pipeline works on.
package htmltext

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// noise is removed before any conversion.
const noise = "script, style, noscript, iframe, svg, form"

// blocks end a line in plain-text output.
const blocks = "p, div, li, h1, h2, h3, h4, h5, h6, tr, pre, blockquote, section, article, table, ul, ol, dt, dd"

// ToText flattens HTML into plain text. Block elements end a line and
// runs of whitespace inside a line collapse to one space.
func ToText(html string) string {
	if !looksLikeHTML(html) {
		return normaliseLines(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return normaliseLines(html)
	}
	doc.Find(noise).Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blocks).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Find("img[alt]").Each(func(_ int, s *goquery.Selection) {
		if alt, _ := s.Attr("alt"); strings.TrimSpace(alt) != "" {
			s.ReplaceWithHtml(" " + escape(alt) + " ")
		}
	})

	return normaliseLines(doc.Text())
}

// ToMarkdown converts HTML into Markdown, keeping headings, lists, and
// links. It falls back to ToText if conversion fails.
func ToMarkdown(html string) string {
	if !looksLikeHTML(html) {
		return strings.TrimSpace(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ToText(html)
	}
	doc.Find(noise).Remove()

	converter := md.NewConverter("", true, nil)
	markdown := converter.Convert(doc.Find("body"))
	if strings.TrimSpace(markdown) == "" {
		return ToText(html)
	}
	return collapseBlankLines(markdown)
}

// Title extracts the first heading, used when an article has no title.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1, h2").First().Text())
}

func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}

func normaliseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func collapseBlankLines(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
