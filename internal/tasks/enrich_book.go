package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/clipcat/clipcat/internal/entities"
	"github.com/clipcat/clipcat/internal/googlebooks"
)

// BookEnrichStore is the slice of the books repository the enrichment task
// needs.
type BookEnrichStore interface {
	GetByID(id uint) (*entities.Book, error)
	Update(id uint, updates map[string]any) error
}

// EnrichBookTask backfills one book's catalog metadata.
type EnrichBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for book enrichment tasks.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichBookProcessor creates a processor function for EnrichBookTask.
// Books that already carry a catalog id, and books the catalog cannot
// match, complete without retrying.
func EnrichBookProcessor(store BookEnrichStore, matcher *googlebooks.Client) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		book, err := store.GetByID(task.BookID)
		if err != nil {
			return fmt.Errorf("load book %d: %w", task.BookID, err)
		}

		if book.GoogleBooksID != nil {
			log.Printf("[TASK] Book %d (%s) already enriched", book.ID, book.Title)
			return nil
		}

		candidate, err := matcher.Match(ctx, book.Title, book.Author)
		if err != nil {
			if errors.Is(err, googlebooks.ErrNoMatch) || errors.Is(err, googlebooks.ErrNotConfigured) {
				log.Printf("[TASK] Book %d (%s): no catalog match (%v)", book.ID, book.Title, err)
				return nil
			}
			return fmt.Errorf("match book %d: %w", task.BookID, err)
		}

		updates := enrichmentUpdates(book, candidate)
		if len(updates) == 0 {
			log.Printf("[TASK] Book %d (%s): nothing to update", book.ID, book.Title)
			return nil
		}

		if err := store.Update(book.ID, updates); err != nil {
			return fmt.Errorf("update book %d: %w", task.BookID, err)
		}

		log.Printf("[TASK] Enriched book %d (%s): %d fields", book.ID, book.Title, len(updates))
		return nil
	}
}

// enrichmentUpdates maps candidate fields onto columns the book is still
// missing. Existing values are never overwritten.
func enrichmentUpdates(book *entities.Book, c *googlebooks.Candidate) map[string]any {
	updates := make(map[string]any)

	setIfMissing := func(column string, current *string, value string) {
		if current == nil && value != "" {
			updates[column] = value
		}
	}

	setIfMissing("google_books_id", book.GoogleBooksID, c.GoogleBooksID)
	setIfMissing("isbn13", book.ISBN13, c.ISBN13)
	setIfMissing("isbn10", book.ISBN10, c.ISBN10)
	setIfMissing("image_url", book.ImageURL, c.ImageURL)
	setIfMissing("subtitle", book.Subtitle, c.Subtitle)
	setIfMissing("published_date", book.PublishedDate, c.PublishedDate)
	setIfMissing("description", book.Description, c.Description)
	setIfMissing("text_snippet", book.TextSnippet, c.TextSnippet)
	setIfMissing("google_books_link", book.GoogleBooksLink, c.GoogleBooksLink)

	if book.PageCount == nil && c.PageCount > 0 {
		updates["page_count"] = c.PageCount
	}

	return updates
}

// NewEnrichBookQueue creates a backlite queue for book enrichment tasks.
func NewEnrichBookQueue(store BookEnrichStore, matcher *googlebooks.Client) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(store, matcher))
}
