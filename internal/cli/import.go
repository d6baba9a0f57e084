// Package cli implements the command-line subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipcat/clipcat/internal/clippings"
	"github.com/clipcat/clipcat/internal/config"
	"github.com/clipcat/clipcat/internal/database"
	"github.com/clipcat/clipcat/internal/database/books"
	"github.com/clipcat/clipcat/internal/database/highlights"
	"github.com/clipcat/clipcat/internal/googlebooks"
	"github.com/clipcat/clipcat/internal/importers"
	"github.com/clipcat/clipcat/internal/titles"
)

// ImportCommand imports markdown clippings files into the catalog.
type ImportCommand struct {
	Dir          string
	DatabasePath string
	APIKey       string
	UserID       uint
	Verbose      bool
	DryRun       bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	var userID uint64
	fs.StringVar(&cmd.Dir, "dir", "", "Directory of markdown clippings files, one book per file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.StringVar(&cmd.APIKey, "api-key", os.Getenv("GOOGLE_BOOKS_API_KEY"), "Google Books API key (defaults to GOOGLE_BOOKS_API_KEY)")
	fs.Uint64Var(&userID, "user", 0, "User ID to import under")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and report without writing to the database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -dir <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import markdown clippings files from a directory. Each .md file is one\n")
		fmt.Fprintf(os.Stderr, "book; the filename carries the title.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.UserID = uint(userID)

	if cmd.Dir == "" {
		return fmt.Errorf("required flag -dir not provided")
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	entries, err := os.ReadDir(cmd.Dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var (
		files []clippings.File
		raw   []importers.RawBook
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(cmd.Dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		body := string(content)
		files = append(files, clippings.File{Filename: entry.Name(), Content: body})

		title, author := clippings.ParseHeader(body)
		if title == "" {
			title = titles.FromFilename(entry.Name())
		}
		raw = append(raw, importers.RawBook{
			Title:      title,
			Author:     author,
			Highlights: clippings.ParseBody(body),
		})

		if cmd.Verbose {
			fmt.Printf("  %s: %q by %q, %d highlights\n", entry.Name(), title, author, len(raw[len(raw)-1].Highlights))
		}
	}

	if len(raw) == 0 {
		fmt.Println("No markdown files found")
		return nil
	}
	fmt.Printf("Parsed %d files\n", len(raw))

	if cmd.DryRun {
		fmt.Println("Dry run, nothing written")
		return nil
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	booksRepo := books.NewRepository(db.DB)
	highlightsRepo := highlights.NewRepository(db.DB)
	matcher := googlebooks.NewClient(cmd.APIKey)
	importer := importers.New(booksRepo, highlightsRepo, matcher)

	ctx := context.Background()

	imported, items, err := importer.ImportBooks(ctx, cmd.UserID, raw)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	for _, item := range items {
		if cmd.Verbose || item.Status != importers.StatusCreated {
			fmt.Printf("  [%s] %s", item.Status, item.Title)
			if item.Reason != "" {
				fmt.Printf(" (%s)", item.Reason)
			}
			fmt.Println()
		}
	}
	fmt.Printf("Imported %d books\n", len(imported))

	reports, err := importer.SaveHighlights(ctx, cmd.UserID, files)
	if err != nil {
		return fmt.Errorf("saving highlights failed: %w", err)
	}

	saved := 0
	for _, report := range reports {
		saved += report.Saved
		if report.Skipped && cmd.Verbose {
			fmt.Printf("  skipped %s: %s\n", report.Filename, report.Reason)
		}
	}
	fmt.Printf("Saved %d highlights\n", saved)

	return nil
}
