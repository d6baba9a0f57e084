package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clipcat/clipcat/internal/database/books"
	"github.com/clipcat/clipcat/internal/exporters"
)

// ExportController renders books back into their markdown form.
type ExportController struct {
	books *books.Repository
}

func NewExportController(booksRepo *books.Repository) *ExportController {
	return &ExportController{books: booksRepo}
}

// ExportMarkdown handles GET /api/export/markdown. With ?book_id=N only
// that book is rendered; otherwise every book the user owns.
func (ec *ExportController) ExportMarkdown(c *gin.Context) {
	userID := GetUserID(c)

	var exports []exporters.BookExport

	if bookIDStr := c.Query("book_id"); bookIDStr != "" {
		id, err := strconv.ParseUint(bookIDStr, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid book_id")
			return
		}

		book, err := ec.books.GetByID(uint(id))
		if err != nil || book.UserID != userID {
			respondNotFound(c, "book")
			return
		}
		exports = append(exports, exporters.FromEntity(*book))
	} else {
		all, err := ec.books.ListForUserWithHighlights(userID)
		if err != nil {
			respondInternalError(c, err, "list books")
			return
		}
		for _, book := range all {
			exports = append(exports, exporters.FromEntity(book))
		}
	}

	files := exporters.Render(exports)
	c.JSON(http.StatusOK, gin.H{"files": files})
}
