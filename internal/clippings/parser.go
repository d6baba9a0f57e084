// Package clippings parses the markdown-shaped highlight export one book
// at a time: a title line, a "Highlights" header, then one highlight per
// blank-line-separated paragraph.
//
// Parsing is tolerant over rejecting: capture devices disagree on which
// metadata they emit, so a missing fragment degrades to a default (page 0,
// empty location, current time) instead of failing the paragraph.
package clippings

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// File is one uploaded export payload.
type File struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Highlight is one parsed highlight record. Page 0 means the metadata
// carried no page; an empty Location means no location range was found.
type Highlight struct {
	Content  string
	Page     int
	Location string
	AddedAt  time.Time
}

// metadataSeparator splits a paragraph into highlight text and the
// trailing metadata line ("  - page 4 location 52-53 added on ...").
const metadataSeparator = "\n  - "

var (
	pagePattern     = regexp.MustCompile(`page (\d+)`)
	locationPattern = regexp.MustCompile(`location (\d+-\d+)`)
	addedOnPattern  = regexp.MustCompile(`added on ([^\n]+)`)

	// Date layouts observed across export sources.
	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"Monday, January 2, 2006 3:04:05 PM",
		"Monday, 2 January 2006 15:04:05",
		"January 2, 2006",
		"2 January 2006",
	}
)

// ParseHeader recovers the book title and author from the first paragraph,
// which renders as "# <title> - <author>". Either value may come back empty
// when the header is absent or carries no separator.
func ParseHeader(body string) (title, author string) {
	first, _, _ := strings.Cut(body, "\n\n")
	first = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(first), "#"))
	if first == "" {
		return "", ""
	}

	// The author follows the last " - "; titles may contain dashes of
	// their own.
	if idx := strings.LastIndex(first, " - "); idx >= 0 {
		return strings.TrimSpace(first[:idx]), strings.TrimSpace(first[idx+3:])
	}
	return first, ""
}

// ParseBody turns one book's raw export body into its ordered highlights.
// The first two paragraphs (title line, "Highlights" header) are always
// skipped. Never returns an error: unparsable metadata degrades to
// defaults.
func ParseBody(body string) []Highlight {
	paragraphs := strings.Split(body, "\n\n")
	if len(paragraphs) <= 2 {
		return nil
	}

	var highlights []Highlight
	for _, paragraph := range paragraphs[2:] {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}

		// A paragraph without the separator is all content, no metadata.
		content, metadata, _ := strings.Cut(paragraph, metadataSeparator)

		highlights = append(highlights, Highlight{
			Content:  strings.TrimSpace(strings.TrimPrefix(content, "- ")),
			Page:     parsePage(metadata),
			Location: parseLocation(metadata),
			AddedAt:  parseAddedAt(metadata),
		})
	}

	return highlights
}

func parsePage(metadata string) int {
	matches := pagePattern.FindStringSubmatch(metadata)
	if len(matches) < 2 {
		return 0
	}
	page, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return page
}

func parseLocation(metadata string) string {
	matches := locationPattern.FindStringSubmatch(metadata)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

func parseAddedAt(metadata string) time.Time {
	matches := addedOnPattern.FindStringSubmatch(metadata)
	if len(matches) < 2 {
		return time.Now()
	}

	dateStr := strings.TrimSpace(matches[1])
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}
	return time.Now()
}
