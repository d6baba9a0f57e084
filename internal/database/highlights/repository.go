// Package highlights provides database operations for highlights serving
// the import batch insert and the highlight CRUD endpoints.
package highlights

import (
	"gorm.io/gorm"

	"github.com/clipcat/clipcat/internal/entities"
	"github.com/clipcat/clipcat/internal/importers"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ importers.HighlightStore = (*Repository)(nil)

// CreateBatch inserts all highlights in one statement.
func (r *Repository) CreateBatch(rows []entities.Highlight) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}

// GetByID retrieves a highlight with its sub-highlights and notes.
func (r *Repository) GetByID(id uint) (*entities.Highlight, error) {
	var highlight entities.Highlight
	err := r.db.Preload("SubHighlights").Preload("Notes").First(&highlight, id).Error
	if err != nil {
		return nil, err
	}
	return &highlight, nil
}

// ListForBook retrieves a book's highlights ordered by page then date.
func (r *Repository) ListForBook(bookID uint) ([]entities.Highlight, error) {
	var rows []entities.Highlight
	err := r.db.Preload("SubHighlights").Preload("Notes").
		Where("book_id = ?", bookID).
		Order("page ASC, added_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListFavourites retrieves a user's favourite highlights, newest first.
func (r *Repository) ListFavourites(userID uint) ([]entities.Highlight, error) {
	var rows []entities.Highlight
	err := r.db.Where("user_id = ? AND is_favorite = ?", userID, true).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// UpdateContent replaces a highlight's text.
func (r *Repository) UpdateContent(id uint, content string) error {
	return r.db.Model(&entities.Highlight{}).Where("id = ?", id).Update("content", content).Error
}

// SetFavourite flips the favourite flag.
func (r *Repository) SetFavourite(id uint, value bool) error {
	return r.db.Model(&entities.Highlight{}).Where("id = ?", id).Update("is_favorite", value).Error
}

// Delete soft-deletes a highlight.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Highlight{}, id).Error
}

// CreateSubHighlight marks a span inside a highlight.
func (r *Repository) CreateSubHighlight(highlightID uint, startIndex, endIndex int) (*entities.SubHighlight, error) {
	sub := &entities.SubHighlight{
		HighlightID: highlightID,
		StartIndex:  startIndex,
		EndIndex:    endIndex,
	}
	if err := r.db.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubHighlight removes a marked span.
func (r *Repository) DeleteSubHighlight(id uint) error {
	return r.db.Delete(&entities.SubHighlight{}, id).Error
}
