package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipcat/clipcat/internal/clippings"
	"github.com/clipcat/clipcat/internal/importers"
	"github.com/clipcat/clipcat/internal/titles"
)

const (
	maxClippingsFileSize = 10 * 1024 * 1024 // 10 MB per file
	maxClippingsFiles    = 100
)

// ImportController accepts markdown clippings uploads and runs them through
// the enrichment pipeline.
type ImportController struct {
	importer *importers.Importer
}

func NewImportController(importer *importers.Importer) *ImportController {
	return &ImportController{importer: importer}
}

type ImportResult struct {
	Success            bool                   `json:"success"`
	Error              string                 `json:"error,omitempty"`
	BooksImported      int                    `json:"books_imported"`
	HighlightsImported int                    `json:"highlights_imported"`
	Items              []importers.ItemResult `json:"items,omitempty"`
	Files              []importers.FileReport `json:"files,omitempty"`
}

// ImportClippings handles POST /api/import/clippings. Each uploaded file is
// one book's markdown export; the filename carries the title.
func (ic *ImportController) ImportClippings(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, &ImportResult{
			Success: false,
			Error:   "multipart form expected",
		})
		return
	}

	uploads := form.File["files"]
	if len(uploads) == 0 {
		ctx.JSON(http.StatusBadRequest, &ImportResult{
			Success: false,
			Error:   "no files provided",
		})
		return
	}
	if len(uploads) > maxClippingsFiles {
		ctx.JSON(http.StatusBadRequest, &ImportResult{
			Success: false,
			Error:   fmt.Sprintf("too many files (max %d)", maxClippingsFiles),
		})
		return
	}

	var (
		files []clippings.File
		raw   []importers.RawBook
	)
	for _, upload := range uploads {
		if upload.Size > maxClippingsFileSize {
			ctx.JSON(http.StatusBadRequest, &ImportResult{
				Success: false,
				Error:   fmt.Sprintf("%s is too large (max %d MB)", upload.Filename, maxClippingsFileSize/(1024*1024)),
			})
			return
		}

		f, err := upload.Open()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, &ImportResult{
				Success: false,
				Error:   fmt.Sprintf("failed to open %s", upload.Filename),
			})
			return
		}
		content, err := io.ReadAll(io.LimitReader(f, maxClippingsFileSize+1))
		f.Close()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, &ImportResult{
				Success: false,
				Error:   fmt.Sprintf("failed to read %s", upload.Filename),
			})
			return
		}

		body := string(content)
		files = append(files, clippings.File{
			Filename: upload.Filename,
			Content:  body,
		})

		title, author := clippings.ParseHeader(body)
		if title == "" {
			title = titles.FromFilename(upload.Filename)
		}
		raw = append(raw, importers.RawBook{
			Title:      title,
			Author:     author,
			Highlights: clippings.ParseBody(body),
		})
	}

	userID := GetUserID(ctx)

	imported, items, err := ic.importer.ImportBooks(ctx.Request.Context(), userID, raw)
	if err != nil {
		respondInternalError(ctx, err, "import books")
		return
	}

	reports, err := ic.importer.SaveHighlights(ctx.Request.Context(), userID, files)
	if err != nil {
		respondInternalError(ctx, err, "save highlights")
		return
	}

	saved := 0
	for _, report := range reports {
		saved += report.Saved
	}

	ctx.JSON(http.StatusOK, &ImportResult{
		Success:            true,
		BooksImported:      len(imported),
		HighlightsImported: saved,
		Items:              items,
		Files:              reports,
	})
}
