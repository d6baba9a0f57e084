package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleViewer UserRole = "viewer"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	TokenHash    string         `gorm:"index;size:64" json:"-"` // SHA-256 of API token, never the plaintext
	Role         UserRole       `gorm:"size:20;default:'viewer'" json:"role"`
	FailedLogins int            `gorm:"default:0" json:"-"`
	LockedUntil  *time.Time     `json:"-"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Book is one imported title. GoogleBooksID is a secondary dedup key: the
// import pipeline never creates two books sharing a volume id. Enrichment
// fields are pointers so that "catalog had no value" persists as NULL.
type Book struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index" json:"user_id"`
	Title  string `gorm:"index;size:512" json:"title"`
	Author string `gorm:"index;size:256" json:"author"`

	HighlightsCount int `gorm:"default:0" json:"highlights_count"`
	CommentsCount   int `gorm:"default:0" json:"comments_count"`
	BookmarksCount  int `gorm:"default:0" json:"bookmarks_count"`

	GoogleBooksID   *string  `gorm:"index;size:64" json:"google_books_id,omitempty"`
	ISBN13          *string  `gorm:"size:20" json:"isbn13,omitempty"`
	ISBN10          *string  `gorm:"size:20" json:"isbn10,omitempty"`
	ImageURL        *string  `gorm:"size:2048" json:"image_url,omitempty"`
	Subtitle        *string  `gorm:"size:512" json:"subtitle,omitempty"`
	PublishedDate   *string  `gorm:"size:32" json:"published_date,omitempty"`
	PageCount       *int     `json:"page_count,omitempty"`
	Description     *string  `gorm:"type:text" json:"description,omitempty"`
	Categories      []string `gorm:"serializer:json" json:"categories"`
	TextSnippet     *string  `gorm:"type:text" json:"text_snippet,omitempty"`
	GoogleBooksLink *string  `gorm:"size:2048" json:"google_books_link,omitempty"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Highlights []Highlight `gorm:"foreignKey:BookID" json:"highlights,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Highlight carries denormalized BookTitle/BookAuthor so exports don't need
// a join. Page 0 means unknown; Location may be empty.
type Highlight struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	BookID uint `gorm:"index" json:"book_id"`
	UserID uint `gorm:"index" json:"user_id"`

	Content  string    `gorm:"type:text" json:"content"`
	Page     int       `gorm:"default:0" json:"page"`
	Location string    `gorm:"size:32" json:"location"`
	AddedAt  time.Time `json:"added_at"`

	BookTitle  string `gorm:"size:512" json:"book_title"`
	BookAuthor string `gorm:"size:256" json:"book_author"`

	IsFavorite bool `gorm:"default:false" json:"is_favorite"`

	Book          Book           `gorm:"foreignKey:BookID" json:"-"`
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	SubHighlights []SubHighlight `gorm:"foreignKey:HighlightID" json:"sub_highlights,omitempty"`
	Notes         []Note         `gorm:"foreignKey:HighlightID" json:"notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// SubHighlight marks a span inside a highlight's content by rune offsets.
type SubHighlight struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HighlightID uint      `gorm:"index" json:"highlight_id"`
	StartIndex  int       `json:"start_index"`
	EndIndex    int       `json:"end_index"`
	CreatedAt   time.Time `json:"created_at"`
}

type Note struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	HighlightID uint           `gorm:"index" json:"highlight_id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	Content     string         `gorm:"type:text" json:"content"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string         { return "users" }
func (Book) TableName() string         { return "books" }
func (Highlight) TableName() string    { return "highlights" }
func (SubHighlight) TableName() string { return "sub_highlights" }
func (Note) TableName() string         { return "notes" }
