// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// boilerplate selects markup that never carries article content. Images are
// dropped with it; links survive conversion.
const boilerplate = "script, style, nav, footer, aside, noscript, iframe, form, img, picture, svg"

// minUsefulLength is the cleaned length, in characters, below which the
// readability extractor is tried as well.
const minUsefulLength = 200

// Clean converts a page to readable Markdown text. Boilerplate regions are
// removed before conversion. Pages that yield almost nothing (single-page
// apps, layouts built from divs the selectors miss) are re-parsed with a
// readability extractor and the longer result wins.
func Clean(rawHTML, pageURL string) (string, error) {
	text, err := toMarkdown(rawHTML)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(text) >= minUsefulLength {
		return text, nil
	}

	if fallback := readabilityText(rawHTML, pageURL); utf8.RuneCountInString(fallback) > utf8.RuneCountInString(text) {
		return fallback, nil
	}
	return text, nil
}

func toMarkdown(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find(boilerplate).Remove()

	stripped, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(stripped)
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// readabilityText runs the readability extractor and returns the article as
// Markdown, or its plain text when conversion fails. Any failure yields "".
func readabilityText(rawHTML, pageURL string) string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return ""
	}
	if md, err := toMarkdown(article.Content); err == nil && md != "" {
		return md
	}
	return strings.TrimSpace(article.TextContent)
}

// truncationMarker is appended to text cut at the length limit.
const truncationMarker = "..."

// Truncate cuts s to at most max characters, appending the truncation
// marker when anything was removed. A non-positive max disables the limit.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + truncationMarker
		}
		n++
	}
	return s
}
