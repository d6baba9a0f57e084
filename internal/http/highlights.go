package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipcat/clipcat/internal/database/highlights"
)

// HighlightsController serves highlight editing endpoints.
type HighlightsController struct {
	highlights *highlights.Repository
}

func NewHighlightsController(repo *highlights.Repository) *HighlightsController {
	return &HighlightsController{highlights: repo}
}

// ListForBook handles GET /api/books/:id/highlights.
func (hc *HighlightsController) ListForBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rows, err := hc.highlights.ListForBook(bookID)
	if err != nil {
		respondInternalError(c, err, "list highlights")
		return
	}

	c.JSON(http.StatusOK, gin.H{"highlights": rows})
}

// ListFavourites handles GET /api/highlights/favourites.
func (hc *HighlightsController) ListFavourites(c *gin.Context) {
	rows, err := hc.highlights.ListFavourites(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list favourites")
		return
	}

	c.JSON(http.StatusOK, gin.H{"highlights": rows})
}

type updateHighlightRequest struct {
	Content string `json:"content" binding:"required"`
}

// Update handles PATCH /api/highlights/:id.
func (hc *HighlightsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	highlight, err := hc.highlights.GetByID(id)
	if err != nil || highlight.UserID != GetUserID(c) {
		respondNotFound(c, "highlight")
		return
	}

	var req updateHighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := hc.highlights.UpdateContent(id, req.Content); err != nil {
		respondInternalError(c, err, "update highlight")
		return
	}

	respondSuccess(c, "highlight updated")
}

type favouriteRequest struct {
	Favourite bool `json:"favourite"`
}

// SetFavourite handles PUT /api/highlights/:id/favourite.
func (hc *HighlightsController) SetFavourite(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	highlight, err := hc.highlights.GetByID(id)
	if err != nil || highlight.UserID != GetUserID(c) {
		respondNotFound(c, "highlight")
		return
	}

	var req favouriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := hc.highlights.SetFavourite(id, req.Favourite); err != nil {
		respondInternalError(c, err, "set favourite")
		return
	}

	respondSuccess(c, "favourite updated")
}

// Delete handles DELETE /api/highlights/:id.
func (hc *HighlightsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	highlight, err := hc.highlights.GetByID(id)
	if err != nil || highlight.UserID != GetUserID(c) {
		respondNotFound(c, "highlight")
		return
	}

	if err := hc.highlights.Delete(id); err != nil {
		respondInternalError(c, err, "delete highlight")
		return
	}

	respondSuccess(c, "highlight deleted")
}

type subHighlightRequest struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index" binding:"required"`
}

// CreateSubHighlight handles POST /api/highlights/:id/subhighlights.
// A sub-highlight marks an emphasized span inside the highlight's content.
func (hc *HighlightsController) CreateSubHighlight(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	highlight, err := hc.highlights.GetByID(id)
	if err != nil || highlight.UserID != GetUserID(c) {
		respondNotFound(c, "highlight")
		return
	}

	var req subHighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.StartIndex < 0 || req.EndIndex <= req.StartIndex || req.EndIndex > len(highlight.Content) {
		respondBadRequest(c, "invalid span")
		return
	}

	sub, err := hc.highlights.CreateSubHighlight(id, req.StartIndex, req.EndIndex)
	if err != nil {
		respondInternalError(c, err, "create sub-highlight")
		return
	}

	respondCreated(c, gin.H{"sub_highlight": sub})
}

// DeleteSubHighlight handles DELETE /api/highlights/:id/subhighlights/:subID.
func (hc *HighlightsController) DeleteSubHighlight(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	subID, ok := parseIDParam(c, "subID")
	if !ok {
		return
	}

	highlight, err := hc.highlights.GetByID(id)
	if err != nil || highlight.UserID != GetUserID(c) {
		respondNotFound(c, "highlight")
		return
	}

	if err := hc.highlights.DeleteSubHighlight(subID); err != nil {
		respondInternalError(c, err, "delete sub-highlight")
		return
	}

	respondSuccess(c, "sub-highlight deleted")
}
