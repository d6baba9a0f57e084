package importers

import (
	"context"
	"fmt"
	"log"

	"github.com/clipcat/clipcat/internal/clippings"
	"github.com/clipcat/clipcat/internal/entities"
	"github.com/clipcat/clipcat/internal/titles"
)

// FileReport records what happened to one uploaded file in the highlight
// save path.
type FileReport struct {
	Filename string `json:"filename"`
	Saved    int    `json:"saved"`
	Skipped  bool   `json:"skipped,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// SaveHighlights links each file's highlights to an already-imported book,
// located by the filename-derived title with a case-insensitive lookup.
// A file whose book cannot be found is skipped with a warning; the rest
// of the batch proceeds. All surviving rows go in with one batch insert.
func (imp *Importer) SaveHighlights(ctx context.Context, userID uint, files []clippings.File) ([]FileReport, error) {
	reports := make([]FileReport, 0, len(files))
	var rows []entities.Highlight

	for _, file := range files {
		report := FileReport{Filename: file.Filename}

		title := titles.FromFilename(file.Filename)
		book, err := imp.books.FindByTitleInsensitive(userID, title)
		if err != nil {
			return reports, fmt.Errorf("look up book for %s: %w", file.Filename, err)
		}
		if book == nil {
			log.Printf("Import: book not found for %s (looked for %q), skipping its highlights", file.Filename, title)
			report.Skipped = true
			report.Reason = fmt.Sprintf("no book titled %q", title)
			reports = append(reports, report)
			continue
		}

		for _, h := range clippings.ParseBody(file.Content) {
			rows = append(rows, entities.Highlight{
				BookID:     book.ID,
				UserID:     userID,
				Content:    h.Content,
				Page:       h.Page,
				Location:   h.Location,
				AddedAt:    h.AddedAt,
				BookTitle:  book.Title,
				BookAuthor: book.Author,
			})
			report.Saved++
		}

		reports = append(reports, report)
	}

	if len(rows) == 0 {
		return reports, nil
	}

	if err := imp.highlights.CreateBatch(rows); err != nil {
		return reports, fmt.Errorf("batch insert highlights: %w", err)
	}

	return reports, nil
}
