package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipcat/clipcat/internal/database/highlights"
	"github.com/clipcat/clipcat/internal/database/notes"
	"github.com/clipcat/clipcat/internal/entities"
)

// NotesController serves reader notes attached to highlights.
type NotesController struct {
	notes      *notes.Repository
	highlights *highlights.Repository
}

func NewNotesController(notesRepo *notes.Repository, highlightsRepo *highlights.Repository) *NotesController {
	return &NotesController{
		notes:      notesRepo,
		highlights: highlightsRepo,
	}
}

// ListForHighlight handles GET /api/highlights/:id/notes.
func (nc *NotesController) ListForHighlight(c *gin.Context) {
	highlightID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	highlight, err := nc.highlights.GetByID(highlightID)
	if err != nil || highlight.UserID != GetUserID(c) {
		respondNotFound(c, "highlight")
		return
	}

	rows, err := nc.notes.ListForHighlight(highlightID)
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": rows})
}

type noteRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create handles POST /api/highlights/:id/notes.
func (nc *NotesController) Create(c *gin.Context) {
	highlightID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	highlight, err := nc.highlights.GetByID(highlightID)
	if err != nil || highlight.UserID != GetUserID(c) {
		respondNotFound(c, "highlight")
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	note := &entities.Note{
		HighlightID: highlightID,
		UserID:      GetUserID(c),
		Content:     req.Content,
	}
	if err := nc.notes.Create(note); err != nil {
		respondInternalError(c, err, "create note")
		return
	}

	respondCreated(c, gin.H{"note": note})
}

// Update handles PATCH /api/notes/:id.
func (nc *NotesController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	note, err := nc.notes.GetByID(id)
	if err != nil || note.UserID != GetUserID(c) {
		respondNotFound(c, "note")
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := nc.notes.UpdateContent(id, req.Content); err != nil {
		respondInternalError(c, err, "update note")
		return
	}

	respondSuccess(c, "note updated")
}

// Delete handles DELETE /api/notes/:id.
func (nc *NotesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	note, err := nc.notes.GetByID(id)
	if err != nil || note.UserID != GetUserID(c) {
		respondNotFound(c, "note")
		return
	}

	if err := nc.notes.Delete(id); err != nil {
		respondInternalError(c, err, "delete note")
		return
	}

	respondSuccess(c, "note deleted")
}
