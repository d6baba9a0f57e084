package importers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipcat/clipcat/internal/clippings"
	"github.com/clipcat/clipcat/internal/entities"
	"github.com/clipcat/clipcat/internal/googlebooks"
)

// fakeMatcher resolves titles from a fixed candidate table. Unknown titles
// come back as ErrNoMatch; titles in the failing set as a transport error.
type fakeMatcher struct {
	mu         sync.Mutex
	candidates map[string]*googlebooks.Candidate
	failing    map[string]bool
	calls      int
}

func (m *fakeMatcher) Match(_ context.Context, title, _ string) (*googlebooks.Candidate, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.failing[title] {
		return nil, errors.New("connection reset")
	}
	if c, ok := m.candidates[title]; ok {
		return c, nil
	}
	return nil, googlebooks.ErrNoMatch
}

// fakeBookStore keeps books in memory and counts store calls.
type fakeBookStore struct {
	mu               sync.Mutex
	books            []entities.Book
	nextID           uint
	createBatchCalls int
	readBackCalls    int
}

func (s *fakeBookStore) FindByGoogleBooksID(id string) (*entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].GoogleBooksID != nil && *s.books[i].GoogleBooksID == id {
			return &s.books[i], nil
		}
	}
	return nil, nil
}

func (s *fakeBookStore) CreateBatch(books []entities.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createBatchCalls++
	for _, book := range books {
		s.nextID++
		book.ID = s.nextID
		book.CreatedAt = time.Now()
		s.books = append(s.books, book)
	}
	return nil
}

func (s *fakeBookStore) FindRecentlyImported(userID uint, keys []BookKey) ([]entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readBackCalls++

	var out []entities.Book
	for i := len(s.books) - 1; i >= 0; i-- {
		book := s.books[i]
		if book.UserID != userID {
			continue
		}
		for _, key := range keys {
			if book.Title == key.Title && book.Author == key.Author {
				out = append(out, book)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeBookStore) FindByTitleInsensitive(userID uint, title string) (*entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].UserID == userID && strings.EqualFold(s.books[i].Title, title) {
			return &s.books[i], nil
		}
	}
	return nil, nil
}

type fakeHighlightStore struct {
	mu    sync.Mutex
	rows  []entities.Highlight
	calls int
}

func (s *fakeHighlightStore) CreateBatch(rows []entities.Highlight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.rows = append(s.rows, rows...)
	return nil
}

func candidate(id string) *googlebooks.Candidate {
	return &googlebooks.Candidate{
		GoogleBooksID: id,
		PageCount:     200,
	}
}

func TestImportBooks_EmptyInput(t *testing.T) {
	store := &fakeBookStore{}
	imp := New(store, &fakeHighlightStore{}, &fakeMatcher{})

	created, results, err := imp.ImportBooks(context.Background(), 1, nil)

	require.NoError(t, err)
	assert.Nil(t, created)
	assert.Nil(t, results)
	assert.Zero(t, store.createBatchCalls)
	assert.Zero(t, store.readBackCalls)
}

func TestImportBooks_CreatesMatchedBooks(t *testing.T) {
	matcher := &fakeMatcher{candidates: map[string]*googlebooks.Candidate{
		"Deep Work":     candidate("vol-1"),
		"Atomic Habits": candidate("vol-2"),
	}}
	store := &fakeBookStore{}
	imp := New(store, &fakeHighlightStore{}, matcher)

	raw := []RawBook{
		{Title: "Deep Work", Author: "Cal Newport", Highlights: []clippings.Highlight{{Content: "a"}, {Content: "b"}}},
		{Title: "Atomic Habits", Author: "James Clear"},
	}

	created, results, err := imp.ImportBooks(context.Background(), 7, raw)

	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, 1, store.createBatchCalls)
	assert.Equal(t, 1, store.readBackCalls)

	require.Len(t, results, 2)
	assert.Equal(t, StatusCreated, results[0].Status)
	assert.Equal(t, StatusCreated, results[1].Status)

	// Results keep input order even though enrichment is concurrent
	assert.Equal(t, "Deep Work", results[0].Title)
	assert.Equal(t, "Atomic Habits", results[1].Title)

	stored, err := store.FindByGoogleBooksID("vol-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, uint(7), stored.UserID)
	assert.Equal(t, 2, stored.HighlightsCount)
}

func TestImportBooks_SkipsUnmatched(t *testing.T) {
	matcher := &fakeMatcher{candidates: map[string]*googlebooks.Candidate{
		"Known": candidate("vol-1"),
	}}
	store := &fakeBookStore{}
	imp := New(store, &fakeHighlightStore{}, matcher)

	raw := []RawBook{
		{Title: "Known", Author: "A"},
		{Title: "Unknown", Author: "B"},
	}

	created, results, err := imp.ImportBooks(context.Background(), 1, raw)

	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, StatusCreated, results[0].Status)
	assert.Equal(t, StatusSkippedNoMatch, results[1].Status)
}

func TestImportBooks_AllUnmatchedMakesNoStoreCalls(t *testing.T) {
	store := &fakeBookStore{}
	imp := New(store, &fakeHighlightStore{}, &fakeMatcher{})

	created, results, err := imp.ImportBooks(context.Background(), 1, []RawBook{
		{Title: "Nothing", Author: "Nobody"},
	})

	require.NoError(t, err)
	assert.Empty(t, created)
	require.Len(t, results, 1)
	assert.Equal(t, StatusSkippedNoMatch, results[0].Status)
	assert.Zero(t, store.createBatchCalls)
	assert.Zero(t, store.readBackCalls)
}

func TestImportBooks_TransportFailureMarksItemFailed(t *testing.T) {
	matcher := &fakeMatcher{
		candidates: map[string]*googlebooks.Candidate{"Good": candidate("vol-1")},
		failing:    map[string]bool{"Bad": true},
	}
	store := &fakeBookStore{}
	imp := New(store, &fakeHighlightStore{}, matcher)

	created, results, err := imp.ImportBooks(context.Background(), 1, []RawBook{
		{Title: "Good", Author: "A"},
		{Title: "Bad", Author: "B"},
	})

	// One failure does not abort the batch
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, StatusCreated, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Contains(t, results[1].Reason, "connection reset")
}

func TestImportBooks_ReimportYieldsNothing(t *testing.T) {
	matcher := &fakeMatcher{candidates: map[string]*googlebooks.Candidate{
		"Deep Work": candidate("vol-1"),
	}}
	store := &fakeBookStore{}
	imp := New(store, &fakeHighlightStore{}, matcher)

	raw := []RawBook{{Title: "Deep Work", Author: "Cal Newport"}}

	first, _, err := imp.ImportBooks(context.Background(), 1, raw)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, results, err := imp.ImportBooks(context.Background(), 1, raw)
	require.NoError(t, err)
	assert.Empty(t, second)
	require.Len(t, results, 1)
	assert.Equal(t, StatusSkippedDuplicate, results[0].Status)

	// The duplicate never reached the store again
	assert.Equal(t, 1, store.createBatchCalls)
}

func TestSaveHighlights(t *testing.T) {
	matcher := &fakeMatcher{candidates: map[string]*googlebooks.Candidate{
		"Deep Work": candidate("vol-1"),
	}}
	store := &fakeBookStore{}
	highlightStore := &fakeHighlightStore{}
	imp := New(store, highlightStore, matcher)

	_, _, err := imp.ImportBooks(context.Background(), 1, []RawBook{
		{Title: "Deep Work", Author: "Cal Newport"},
	})
	require.NoError(t, err)

	files := []clippings.File{
		{
			Filename: "deep-work.md",
			Content:  "# Deep Work - Cal Newport\n\n## Highlights\n\n- Focus is rare\n  - page 3 added on 2020-01-01\n\n- Depth wins",
		},
		{
			Filename: "no-such-book.md",
			Content:  "# No Such Book - Nobody\n\n## Highlights\n\n- orphan",
		},
	}

	reports, err := imp.SaveHighlights(context.Background(), 1, files)

	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, 2, reports[0].Saved)
	assert.False(t, reports[0].Skipped)

	assert.True(t, reports[1].Skipped)
	assert.Zero(t, reports[1].Saved)

	// One batch insert regardless of file count
	assert.Equal(t, 1, highlightStore.calls)
	require.Len(t, highlightStore.rows, 2)
	assert.Equal(t, "Focus is rare", highlightStore.rows[0].Content)
	assert.Equal(t, 3, highlightStore.rows[0].Page)
	assert.Equal(t, "Deep Work", highlightStore.rows[0].BookTitle)
}
