package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipcat/clipcat/internal/database/books"
	"github.com/clipcat/clipcat/internal/tasks"
)

// EnrichController enqueues background metadata enrichment for a book.
type EnrichController struct {
	books      *books.Repository
	taskClient *tasks.Client
}

func NewEnrichController(booksRepo *books.Repository, taskClient *tasks.Client) *EnrichController {
	return &EnrichController{
		books:      booksRepo,
		taskClient: taskClient,
	}
}

// Enqueue handles POST /api/books/:id/enrich.
func (ec *EnrichController) Enqueue(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ec.books.GetByID(id)
	if err != nil || book.UserID != GetUserID(c) {
		respondNotFound(c, "book")
		return
	}

	ids, err := ec.taskClient.Add(tasks.EnrichBookTask{BookID: id}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue enrichment")
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{Message: "enrichment queued", Data: gin.H{"task_ids": ids}})
}
