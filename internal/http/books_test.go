package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipcat/clipcat/internal/auth"
	"github.com/clipcat/clipcat/internal/database"
	"github.com/clipcat/clipcat/internal/database/books"
	"github.com/clipcat/clipcat/internal/database/highlights"
	"github.com/clipcat/clipcat/internal/entities"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// asUser injects an authenticated user into the context, standing in for
// the auth middleware.
func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, userID)
		c.Next()
	}
}

func setupBooksTest(t *testing.T) (*gin.Engine, *books.Repository, *highlights.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	booksRepo := books.NewRepository(db.DB)
	highlightsRepo := highlights.NewRepository(db.DB)

	controller := NewBooksController(booksRepo, highlightsRepo)

	router := gin.New()
	api := router.Group("/api", asUser(1))
	api.GET("/books", controller.List)
	api.POST("/books", controller.Create)
	api.GET("/books/stats", controller.Stats)
	api.GET("/books/:id", controller.Get)
	api.PATCH("/books/:id", controller.Update)
	api.DELETE("/books/:id", controller.Delete)

	return router, booksRepo, highlightsRepo
}

func seedBook(t *testing.T, repo *books.Repository, userID uint, title, author string) *entities.Book {
	t.Helper()
	book := &entities.Book{UserID: userID, Title: title, Author: author}
	require.NoError(t, repo.Create(book))
	return book
}

func TestBooksController_List(t *testing.T) {
	router, booksRepo, _ := setupBooksTest(t)

	seedBook(t, booksRepo, 1, "Deep Work", "Cal Newport")
	seedBook(t, booksRepo, 1, "Atomic Habits", "James Clear")
	seedBook(t, booksRepo, 2, "Someone Else's Book", "Other Author")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Books []entities.Book `json:"books"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Books, 2)
	for _, book := range response.Books {
		assert.Equal(t, uint(1), book.UserID)
	}
}

func TestBooksController_Create(t *testing.T) {
	router, booksRepo, _ := setupBooksTest(t)

	body, _ := json.Marshal(map[string]string{"title": "Deep Work", "author": "Cal Newport"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/books", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	book, err := booksRepo.FindByTitleInsensitive(1, "Deep Work")
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, "Cal Newport", book.Author)
	assert.Nil(t, book.GoogleBooksID)

	t.Run("requires a title", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", bytes.NewReader([]byte(`{"author":"Nobody"}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_Get(t *testing.T) {
	router, booksRepo, _ := setupBooksTest(t)

	mine := seedBook(t, booksRepo, 1, "Deep Work", "Cal Newport")
	theirs := seedBook(t, booksRepo, 2, "Hidden Book", "Other Author")

	t.Run("returns own book", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/"+itoa(mine.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Book entities.Book `json:"book"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Deep Work", response.Book.Title)
	})

	t.Run("hides other users' books", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/"+itoa(theirs.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects a non-numeric id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_Stats(t *testing.T) {
	router, booksRepo, highlightsRepo := setupBooksTest(t)

	book := seedBook(t, booksRepo, 1, "Deep Work", "Cal Newport")
	seedBook(t, booksRepo, 1, "Atomic Habits", "James Clear")

	require.NoError(t, highlightsRepo.CreateBatch([]entities.Highlight{
		{BookID: book.ID, UserID: 1, Content: "kept", IsFavorite: true},
		{BookID: book.ID, UserID: 1, Content: "plain"},
	}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Books      int `json:"books"`
		Favourites int `json:"favourites"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Books)
	assert.Equal(t, 1, response.Favourites)
}

func TestBooksController_Update(t *testing.T) {
	router, booksRepo, _ := setupBooksTest(t)

	book := seedBook(t, booksRepo, 1, "Deep Wrk", "Cal Newport")

	body, _ := json.Marshal(map[string]string{"title": "Deep Work"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/api/books/"+itoa(book.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	updated, err := booksRepo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deep Work", updated.Title)
	assert.Equal(t, "Cal Newport", updated.Author)

	t.Run("rejects an empty patch", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/"+itoa(book.ID), bytes.NewReader([]byte("{}")))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_Delete(t *testing.T) {
	router, booksRepo, _ := setupBooksTest(t)

	book := seedBook(t, booksRepo, 1, "Deep Work", "Cal Newport")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/books/"+itoa(book.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	_, err := booksRepo.GetByID(book.ID)
	assert.Error(t, err)

	t.Run("cannot delete another user's book", func(t *testing.T) {
		theirs := seedBook(t, booksRepo, 2, "Hidden Book", "Other Author")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/"+itoa(theirs.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		kept, err := booksRepo.GetByID(theirs.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hidden Book", kept.Title)
	})
}
