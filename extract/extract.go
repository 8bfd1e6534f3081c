// Package extract pulls preview metadata out of a parsed HTML document.
//
// Each field is resolved by a fixed fallback chain: the first source with a
// non-empty raw value wins and later sources are never consulted.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Fields are the raw extraction results. Text fields are already cleaned;
// ImageURL is left exactly as found in the document.
type Fields struct {
	Title       string
	Description string
	Category    string
	ImageURL    string
}

// source yields a candidate value from the document, "" when missing.
type source func(doc *goquery.Document) string

var (
	titleChain = []source{
		metaContent(`meta[property="og:title"]`),
		text(`title`),
		metaContent(`meta[name="title"]`),
	}
	descriptionChain = []source{
		metaContent(`meta[property="og:description"]`),
		metaContent(`meta[name="description"]`),
	}
	imageChain = []source{
		metaContent(`meta[property="og:image"]`),
		metaContent(`meta[property="product:image"]`),
	}
	categoryChain = []source{
		metaContent(`meta[property="product:category"]`),
		lastText(`.breadcrumb a, .breadcrumbs a`),
		firstText(`a[href*="category"], a[href*="department"]`),
	}
)

// Parse reads an HTML document and extracts its fields.
func Parse(r io.Reader) (*Fields, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument extracts fields from an already parsed document.
func FromDocument(doc *goquery.Document) *Fields {
	return &Fields{
		Title:       CleanText(first(doc, titleChain)),
		Description: CleanText(first(doc, descriptionChain)),
		Category:    CleanText(first(doc, categoryChain)),
		ImageURL:    first(doc, imageChain),
	}
}

// CleanText trims s and collapses every run of whitespace to one space.
// Whitespace is the ECMAScript set: it includes U+FEFF (a stray BOM in
// <title> is common) and excludes U+0085.
func CleanText(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

func first(doc *goquery.Document, chain []source) string {
	for _, src := range chain {
		if v := src(doc); v != "" {
			return v
		}
	}
	return ""
}

// metaContent returns the content attribute of the first match.
func metaContent(selector string) source {
	m := cascadia.MustCompile(selector)
	return func(doc *goquery.Document) string {
		v, _ := doc.FindMatcher(m).First().Attr("content")
		return v
	}
}

// text returns the combined text of every match.
func text(selector string) source {
	m := cascadia.MustCompile(selector)
	return func(doc *goquery.Document) string {
		return doc.FindMatcher(m).Text()
	}
}

func firstText(selector string) source {
	m := cascadia.MustCompile(selector)
	return func(doc *goquery.Document) string {
		return doc.FindMatcher(m).First().Text()
	}
}

func lastText(selector string) source {
	m := cascadia.MustCompile(selector)
	return func(doc *goquery.Document) string {
		return doc.FindMatcher(m).Last().Text()
	}
}
