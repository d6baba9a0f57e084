package http

import (
	"github.com/gin-gonic/gin"

	"github.com/clipcat/clipcat/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// RouterConfig carries the dependencies so tests can assemble partial
// routers.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session load so the session context is
	// layered on top of the CSRF request replacement.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	api := router.Group("/api")

	if cfg.Importer != nil {
		importController := NewImportController(cfg.Importer)
		api.POST("/import/clippings", importController.ImportClippings)
	}

	if cfg.Books != nil {
		exportController := NewExportController(cfg.Books)
		api.GET("/export/markdown", exportController.ExportMarkdown)

		booksController := NewBooksController(cfg.Books, cfg.Highlights)
		api.GET("/books", booksController.List)
		api.POST("/books", booksController.Create)
		api.GET("/books/stats", booksController.Stats)
		api.GET("/books/:id", booksController.Get)
		api.PATCH("/books/:id", booksController.Update)
		api.DELETE("/books/:id", booksController.Delete)

		if cfg.TaskClient != nil {
			enrichController := NewEnrichController(cfg.Books, cfg.TaskClient)
			api.POST("/books/:id/enrich", enrichController.Enqueue)
		}
	}

	if cfg.Highlights != nil {
		highlightsController := NewHighlightsController(cfg.Highlights)
		api.GET("/books/:id/highlights", highlightsController.ListForBook)
		api.GET("/highlights/favourites", highlightsController.ListFavourites)
		api.PATCH("/highlights/:id", highlightsController.Update)
		api.PUT("/highlights/:id/favourite", highlightsController.SetFavourite)
		api.DELETE("/highlights/:id", highlightsController.Delete)
		api.POST("/highlights/:id/subhighlights", highlightsController.CreateSubHighlight)
		api.DELETE("/highlights/:id/subhighlights/:subID", highlightsController.DeleteSubHighlight)
	}

	if cfg.Notes != nil {
		notesController := NewNotesController(cfg.Notes, cfg.Highlights)
		api.GET("/highlights/:id/notes", notesController.ListForHighlight)
		api.POST("/highlights/:id/notes", notesController.Create)
		api.PATCH("/notes/:id", notesController.Update)
		api.DELETE("/notes/:id", notesController.Delete)
	}

	return router
}
