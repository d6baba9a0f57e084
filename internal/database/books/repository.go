// Package books provides database operations for the book catalog,
// including the two queries the import pipeline depends on: the volume-id
// dedup lookup and the newest-first read-back after a batch insert.
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/clipcat/clipcat/internal/entities"
	"github.com/clipcat/clipcat/internal/importers"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Compile-time interface check against the importer's store surface.
var _ importers.BookStore = (*Repository)(nil)

// GetByID retrieves a book with its highlights, ordered by page then date.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Highlights", func(db *gorm.DB) *gorm.DB {
		return db.Order("page ASC, added_at ASC")
	}).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListForUser retrieves all of a user's books, newest first.
func (r *Repository) ListForUser(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&books).Error
	return books, err
}

// ListForUserWithHighlights retrieves a user's books with highlights
// preloaded, for export.
func (r *Repository) ListForUserWithHighlights(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Highlights", func(db *gorm.DB) *gorm.DB {
		return db.Order("page ASC, added_at ASC")
	}).Where("user_id = ?", userID).Order("created_at DESC").Find(&books).Error
	return books, err
}

// CountForUser returns the number of books a user owns.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Create inserts a single book (the direct API path, as opposed to the
// import pipeline's batch path).
func (r *Repository) Create(book *entities.Book) error {
	if book.Categories == nil {
		book.Categories = []string{}
	}
	return r.db.Create(book).Error
}

// Update applies the given column updates to a book.
func (r *Repository) Update(id uint, updates map[string]any) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates).Error
}

// Delete soft-deletes a book.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Book{}, id).Error
}

// FindByGoogleBooksID looks a book up by its catalog volume id. Returns
// (nil, nil) when no book carries that id; absence is a normal outcome
// for the dedup check, not an error.
func (r *Repository) FindByGoogleBooksID(googleBooksID string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("google_books_id = ?", googleBooksID).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByTitleInsensitive looks a user's book up by exact title,
// case-insensitively. Returns (nil, nil) on miss.
func (r *Repository) FindByTitleInsensitive(userID uint, title string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("user_id = ? AND LOWER(title) = LOWER(?)", userID, title).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListMissingMetadata returns books that never got a catalog match, for
// the background enrichment sweep.
func (r *Repository) ListMissingMetadata(limit int) ([]entities.Book, error) {
	var books []entities.Book
	q := r.db.Where("google_books_id IS NULL").Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&books).Error
	return books, err
}

// CreateBatch inserts all books in one statement.
func (r *Repository) CreateBatch(books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	return r.db.Create(&books).Error
}

// FindRecentlyImported recovers freshly batch-inserted rows: one OR group
// per survivor matching (title, author, google_books_id-or-null) within
// the user's books, newest first. Survivors identical on all three fields
// cannot be told apart here; the insert API does not hand back ids.
func (r *Repository) FindRecentlyImported(userID uint, keys []importers.BookKey) ([]entities.Book, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	match := r.db.Where("1 = 0")
	for _, key := range keys {
		if key.GoogleBooksID != nil {
			match = match.Or(r.db.Where(
				"title = ? AND author = ? AND google_books_id = ?",
				key.Title, key.Author, *key.GoogleBooksID,
			))
		} else {
			match = match.Or(r.db.Where(
				"title = ? AND author = ? AND google_books_id IS NULL",
				key.Title, key.Author,
			))
		}
	}

	var books []entities.Book
	err := r.db.Where("user_id = ?", userID).
		Where(match).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}
