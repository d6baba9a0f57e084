package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipcat/clipcat/internal/database"
	"github.com/clipcat/clipcat/internal/database/books"
	"github.com/clipcat/clipcat/internal/database/highlights"
	"github.com/clipcat/clipcat/internal/googlebooks"
	"github.com/clipcat/clipcat/internal/importers"
)

// stubMatcher answers catalog lookups from a fixed map so import tests
// never touch the network.
type stubMatcher struct {
	candidates map[string]*googlebooks.Candidate
}

func (m *stubMatcher) Match(_ context.Context, title, _ string) (*googlebooks.Candidate, error) {
	if c, ok := m.candidates[title]; ok {
		return c, nil
	}
	return nil, googlebooks.ErrNoMatch
}

func setupImportTest(t *testing.T, matcher importers.Matcher) (*gin.Engine, *books.Repository, *highlights.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	booksRepo := books.NewRepository(db.DB)
	highlightsRepo := highlights.NewRepository(db.DB)
	importer := importers.New(booksRepo, highlightsRepo, matcher)

	controller := NewImportController(importer)

	router := gin.New()
	router.POST("/api/import/clippings", asUser(1), controller.ImportClippings)

	return router, booksRepo, highlightsRepo
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

const deepWorkExport = `# Deep Work - Cal Newport

## Highlights

- Clarity about what matters provides clarity about what does not.
  - page 14 location 120-121 added on 2020-03-14

- To produce at your peak level you need to work for extended periods with full concentration.
  - page 44 added on 2020-03-15
`

func TestImportController_ImportClippings(t *testing.T) {
	matcher := &stubMatcher{candidates: map[string]*googlebooks.Candidate{
		"Deep Work": {
			GoogleBooksID: "vol-deep-work",
			ISBN13:        "9781455586691",
			PageCount:     304,
		},
	}}
	router, booksRepo, highlightsRepo := setupImportTest(t, matcher)

	body, contentType := multipartUpload(t, map[string]string{
		"deep-work.md": deepWorkExport,
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/import/clippings", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.BooksImported)
	assert.Equal(t, 2, result.HighlightsImported)
	require.Len(t, result.Items, 1)
	assert.Equal(t, importers.StatusCreated, result.Items[0].Status)

	book, err := booksRepo.FindByTitleInsensitive(1, "Deep Work")
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, "Cal Newport", book.Author)
	require.NotNil(t, book.GoogleBooksID)
	assert.Equal(t, "vol-deep-work", *book.GoogleBooksID)

	saved, err := highlightsRepo.ListForBook(book.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, 14, saved[0].Page)
	assert.Equal(t, "120-121", saved[0].Location)
	assert.Equal(t, "Deep Work", saved[0].BookTitle)
}

func TestImportController_ImportClippings_NoMatch(t *testing.T) {
	router, booksRepo, _ := setupImportTest(t, &stubMatcher{})

	body, contentType := multipartUpload(t, map[string]string{
		"obscure-pamphlet.md": "# Obscure Pamphlet - Nobody\n\n## Highlights\n\n- A forgettable line.\n",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/import/clippings", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.BooksImported)
	assert.Equal(t, 0, result.HighlightsImported)
	require.Len(t, result.Items, 1)
	assert.Equal(t, importers.StatusSkippedNoMatch, result.Items[0].Status)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Skipped)

	count, err := booksRepo.CountForUser(1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportController_ImportClippings_BadRequests(t *testing.T) {
	router, _, _ := setupImportTest(t, &stubMatcher{})

	t.Run("rejects a non-multipart body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/import/clippings", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an empty upload", func(t *testing.T) {
		body, contentType := multipartUpload(t, map[string]string{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/import/clippings", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
