// Package importers drives the clippings import end to end: enrich each
// raw book against the external catalog, dedup against already-imported
// volumes, persist the survivors in one batch, then link highlights to
// the books they belong to.
package importers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/clipcat/clipcat/internal/clippings"
	"github.com/clipcat/clipcat/internal/entities"
	"github.com/clipcat/clipcat/internal/googlebooks"
)

// RawBook is one book's worth of parsed clippings entering the pipeline.
type RawBook struct {
	Title      string
	Author     string
	Highlights []clippings.Highlight
}

// ItemStatus classifies what happened to a single raw book. Skips are
// expected outcomes; Failed marks a transport or store problem for that
// book alone.
type ItemStatus string

const (
	StatusCreated          ItemStatus = "created"
	StatusSkippedNoMatch   ItemStatus = "skipped_no_match"
	StatusSkippedDuplicate ItemStatus = "skipped_duplicate"
	StatusFailed           ItemStatus = "failed"
)

// ItemResult reports the per-book outcome so callers can tell "no
// candidate" from "transport failure" from "already imported".
type ItemResult struct {
	Title  string     `json:"title"`
	Author string     `json:"author"`
	Status ItemStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// BookKey identifies a freshly inserted book in the read-back query.
// Two survivors colliding on all three fields are indistinguishable in
// the read-back; the batch insert does not return generated ids.
type BookKey struct {
	Title         string
	Author        string
	GoogleBooksID *string
}

// BookStore is the persistence surface the importer needs for books.
type BookStore interface {
	FindByGoogleBooksID(googleBooksID string) (*entities.Book, error)
	CreateBatch(books []entities.Book) error
	FindRecentlyImported(userID uint, keys []BookKey) ([]entities.Book, error)
	FindByTitleInsensitive(userID uint, title string) (*entities.Book, error)
}

// HighlightStore persists highlight rows in bulk.
type HighlightStore interface {
	CreateBatch(highlights []entities.Highlight) error
}

// Matcher finds at most one catalog candidate per title/author pair.
type Matcher interface {
	Match(ctx context.Context, title, author string) (*googlebooks.Candidate, error)
}

const defaultWorkers = 4

// Importer orchestrates the enrichment fan-out and the two store calls
// that follow it.
type Importer struct {
	books      BookStore
	highlights HighlightStore
	matcher    Matcher
	workers    int
}

func New(books BookStore, highlights HighlightStore, matcher Matcher) *Importer {
	return &Importer{
		books:      books,
		highlights: highlights,
		matcher:    matcher,
		workers:    defaultWorkers,
	}
}

// ImportBooks enriches and persists raw books for a user.
//
// Catalog lookups fan out concurrently, bounded by the worker limit; no
// ordering is guaranteed between them. Books without an acceptable
// candidate, and books whose volume id already exists in the store, are
// skipped. Survivors go in with one batch insert followed by one
// newest-first read-back to recover generated ids. An empty survivor set
// returns immediately with no store calls.
func (imp *Importer) ImportBooks(ctx context.Context, userID uint, raw []RawBook) ([]entities.Book, []ItemResult, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}

	results := make([]ItemResult, len(raw))
	enriched := make([]*entities.Book, len(raw))

	sem := make(chan struct{}, imp.workers)
	var wg sync.WaitGroup
	for i := range raw {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			enriched[i], results[i] = imp.enrichOne(ctx, userID, raw[i])
		}(i)
	}
	wg.Wait()

	var survivors []entities.Book
	var keys []BookKey
	for _, book := range enriched {
		if book == nil {
			continue
		}
		survivors = append(survivors, *book)
		keys = append(keys, BookKey{
			Title:         book.Title,
			Author:        book.Author,
			GoogleBooksID: book.GoogleBooksID,
		})
	}

	if len(survivors) == 0 {
		return nil, results, nil
	}

	if err := imp.books.CreateBatch(survivors); err != nil {
		return nil, results, fmt.Errorf("batch insert books: %w", err)
	}

	created, err := imp.books.FindRecentlyImported(userID, keys)
	if err != nil {
		return nil, results, fmt.Errorf("read back imported books: %w", err)
	}

	return created, results, nil
}

func (imp *Importer) enrichOne(ctx context.Context, userID uint, raw RawBook) (*entities.Book, ItemResult) {
	result := ItemResult{Title: raw.Title, Author: raw.Author}

	candidate, err := imp.matcher.Match(ctx, raw.Title, raw.Author)
	switch {
	case err == nil:
	case errorIsSkip(err):
		log.Printf("Import: no catalog candidate for '%s' by %s: %v", raw.Title, raw.Author, err)
		result.Status = StatusSkippedNoMatch
		result.Reason = err.Error()
		return nil, result
	default:
		log.Printf("Import: catalog lookup failed for '%s' by %s: %v", raw.Title, raw.Author, err)
		result.Status = StatusFailed
		result.Reason = err.Error()
		return nil, result
	}

	if candidate.GoogleBooksID != "" {
		existing, err := imp.books.FindByGoogleBooksID(candidate.GoogleBooksID)
		if err != nil {
			result.Status = StatusFailed
			result.Reason = fmt.Sprintf("dedup lookup: %v", err)
			return nil, result
		}
		if existing != nil {
			result.Status = StatusSkippedDuplicate
			result.Reason = fmt.Sprintf("volume %s already imported", candidate.GoogleBooksID)
			return nil, result
		}
	}

	result.Status = StatusCreated
	return assembleBook(userID, raw, candidate), result
}

// errorIsSkip reports whether a matcher error is an expected "no
// candidate" outcome rather than a transport failure.
func errorIsSkip(err error) bool {
	return errors.Is(err, googlebooks.ErrNoMatch) || errors.Is(err, googlebooks.ErrNotConfigured)
}

func assembleBook(userID uint, raw RawBook, candidate *googlebooks.Candidate) *entities.Book {
	book := &entities.Book{
		UserID:          userID,
		Title:           raw.Title,
		Author:          raw.Author,
		HighlightsCount: len(raw.Highlights),
		CommentsCount:   0,
		BookmarksCount:  0,
		GoogleBooksID:   optional(candidate.GoogleBooksID),
		ISBN13:          optional(candidate.ISBN13),
		ISBN10:          optional(candidate.ISBN10),
		ImageURL:        optional(candidate.ImageURL),
		Subtitle:        optional(candidate.Subtitle),
		PublishedDate:   optional(candidate.PublishedDate),
		Description:     optional(candidate.Description),
		TextSnippet:     optional(candidate.TextSnippet),
		GoogleBooksLink: optional(candidate.GoogleBooksLink),
		Categories:      candidate.Categories,
	}

	if candidate.PageCount > 0 {
		pageCount := candidate.PageCount
		book.PageCount = &pageCount
	}
	if book.Categories == nil {
		book.Categories = []string{}
	}

	return book
}

// optional maps an absent catalog value to NULL rather than an empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
