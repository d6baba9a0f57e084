package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipcat/clipcat/internal/database/books"
	"github.com/clipcat/clipcat/internal/database/highlights"
	"github.com/clipcat/clipcat/internal/entities"
)

// BooksController serves the catalog CRUD endpoints.
type BooksController struct {
	books      *books.Repository
	highlights *highlights.Repository
}

func NewBooksController(booksRepo *books.Repository, highlightsRepo *highlights.Repository) *BooksController {
	return &BooksController{
		books:      booksRepo,
		highlights: highlightsRepo,
	}
}

// List handles GET /api/books.
func (bc *BooksController) List(c *gin.Context) {
	userID := GetUserID(c)

	withHighlights := c.Query("with_highlights") == "true"

	var (
		result any
		err    error
	)
	if withHighlights {
		result, err = bc.books.ListForUserWithHighlights(userID)
	} else {
		result, err = bc.books.ListForUser(userID)
	}
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": result})
}

// Get handles GET /api/books/:id.
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.GetByID(id)
	if err != nil {
		respondNotFound(c, "book")
		return
	}
	if book.UserID != GetUserID(c) {
		respondNotFound(c, "book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}

// Stats handles GET /api/books/stats.
func (bc *BooksController) Stats(c *gin.Context) {
	userID := GetUserID(c)

	total, err := bc.books.CountForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count books")
		return
	}

	favourites, err := bc.highlights.ListFavourites(userID)
	if err != nil {
		respondInternalError(c, err, "list favourites")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books":      total,
		"favourites": len(favourites),
	})
}

type createBookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author"`
}

// Create handles POST /api/books, the direct creation path that bypasses
// the import pipeline. The book starts without catalog metadata; the
// enrichment task can backfill it later.
func (bc *BooksController) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	book := &entities.Book{
		UserID: GetUserID(c),
		Title:  req.Title,
		Author: req.Author,
	}
	if err := bc.books.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	respondCreated(c, gin.H{"book": book})
}

type updateBookRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
}

// Update handles PATCH /api/books/:id.
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.GetByID(id)
	if err != nil || book.UserID != GetUserID(c) {
		respondNotFound(c, "book")
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	updates := make(map[string]any)
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	if err := bc.books.Update(id, updates); err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	respondSuccess(c, "book updated")
}

// Delete handles DELETE /api/books/:id.
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.GetByID(id)
	if err != nil || book.UserID != GetUserID(c) {
		respondNotFound(c, "book")
		return
	}

	if err := bc.books.Delete(id); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted")
}
