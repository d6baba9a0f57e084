package http

import (
	"github.com/clipcat/clipcat/internal/auth"
	"github.com/clipcat/clipcat/internal/config"
	"github.com/clipcat/clipcat/internal/database"
	"github.com/clipcat/clipcat/internal/database/books"
	"github.com/clipcat/clipcat/internal/database/highlights"
	"github.com/clipcat/clipcat/internal/database/notes"
	"github.com/clipcat/clipcat/internal/importers"
	"github.com/clipcat/clipcat/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router.
type RouterConfig struct {
	Database   *database.Database
	Books      *books.Repository
	Highlights *highlights.Repository
	Notes      *notes.Repository

	// Import pipeline
	Importer *importers.Importer

	// Background task client (optional)
	TaskClient *tasks.Client

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string
}
