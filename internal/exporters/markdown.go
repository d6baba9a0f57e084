// Package exporters renders stored books back into the markdown shape the
// import parser consumes, making export/import a near-inverse pair.
package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipcat/clipcat/internal/entities"
	"github.com/clipcat/clipcat/internal/titles"
)

// HighlightEntry is one rendered highlight: the quote line plus an info
// line carrying whatever metadata the source recorded.
type HighlightEntry struct {
	Quote string `json:"quote"`
	Info  string `json:"info"`
}

// BookExport is the exporter's input shape.
type BookExport struct {
	Title      string           `json:"title"`
	Author     string           `json:"author"`
	Highlights []HighlightEntry `json:"highlights"`
}

// MarkdownFile is one rendered export payload.
type MarkdownFile struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// RenderBook renders one book into the export shape:
//
//	# <title> - <author>
//
//	## Highlights
//
//	- <quote>
//	  <info>
func RenderBook(book BookExport) MarkdownFile {
	var builder strings.Builder
	fmt.Fprintf(&builder, "# %s - %s\n\n## Highlights\n\n", book.Title, book.Author)

	blocks := make([]string, 0, len(book.Highlights))
	for _, h := range book.Highlights {
		block := "- " + h.Quote
		if h.Info != "" {
			block += "\n  " + h.Info
		}
		blocks = append(blocks, block)
	}
	builder.WriteString(strings.Join(blocks, "\n\n"))

	return MarkdownFile{
		Content:  builder.String(),
		Filename: titles.Slug(book.Title) + ".md",
	}
}

// Render renders every book into its own markdown payload.
func Render(books []BookExport) []MarkdownFile {
	files := make([]MarkdownFile, 0, len(books))
	for _, book := range books {
		files = append(files, RenderBook(book))
	}
	return files
}

// FromEntity converts a stored book and its highlights into the export
// input shape. The info line reproduces the clippings metadata convention
// so a re-import parses page, location and date back out.
func FromEntity(book entities.Book) BookExport {
	export := BookExport{
		Title:      book.Title,
		Author:     book.Author,
		Highlights: make([]HighlightEntry, 0, len(book.Highlights)),
	}

	for _, h := range book.Highlights {
		export.Highlights = append(export.Highlights, HighlightEntry{
			Quote: h.Content,
			Info:  highlightInfo(h),
		})
	}

	return export
}

// highlightInfo rebuilds the clippings metadata line. The leading "-"
// makes the rendered line match the parser's separator on re-import. A
// highlight with no metadata at all gets no info line.
func highlightInfo(h entities.Highlight) string {
	var parts []string
	if h.Page > 0 {
		parts = append(parts, fmt.Sprintf("page %d", h.Page))
	}
	if h.Location != "" {
		parts = append(parts, fmt.Sprintf("location %s", h.Location))
	}
	if !h.AddedAt.IsZero() {
		parts = append(parts, fmt.Sprintf("added on %s", h.AddedAt.Format("2006-01-02")))
	}
	if len(parts) == 0 {
		return ""
	}
	return "- " + strings.Join(parts, " ")
}

// WriteFiles writes rendered payloads into dir, creating it if needed.
func WriteFiles(dir string, files []MarkdownFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	for _, file := range files {
		path := filepath.Join(dir, file.Filename)
		if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file.Filename, err)
		}
	}

	return nil
}
