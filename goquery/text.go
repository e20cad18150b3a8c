// Package goquery renders provider HTML fragments as plain text.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/youte"
)

// Ensure TextConverter implements youte.Converter at compile time.
var _ youte.Converter = (*TextConverter)(nil)

// TextConverter converts HTML fragments to plain text.
type TextConverter struct{}

// NewTextConverter creates a new TextConverter.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

// Convert returns the text content of html with <br> and block boundaries
// rendered as newlines and entities decoded.
func (c *TextConverter) Convert(html string) (string, error) {
	if !strings.ContainsAny(html, "<&") {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", youte.Errorf(youte.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	text := doc.Find("body").Text()
	return strings.TrimRight(text, "\n"), nil
}
