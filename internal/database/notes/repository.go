// Package notes provides database operations for highlight notes.
package notes

import (
	"gorm.io/gorm"

	"github.com/clipcat/clipcat/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(note *entities.Note) error {
	return r.db.Create(note).Error
}

func (r *Repository) GetByID(id uint) (*entities.Note, error) {
	var note entities.Note
	if err := r.db.First(&note, id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// ListForHighlight retrieves a highlight's notes, oldest first.
func (r *Repository) ListForHighlight(highlightID uint) ([]entities.Note, error) {
	var rows []entities.Note
	err := r.db.Where("highlight_id = ?", highlightID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) UpdateContent(id uint, content string) error {
	return r.db.Model(&entities.Note{}).Where("id = ?", id).Update("content", content).Error
}

func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Note{}, id).Error
}
