package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/clipcat/clipcat/internal/config"
	"github.com/clipcat/clipcat/internal/database"
	"github.com/clipcat/clipcat/internal/database/books"
	"github.com/clipcat/clipcat/internal/exporters"
)

// ExportCommand renders the catalog back into markdown files.
type ExportCommand struct {
	OutputDir    string
	DatabasePath string
	UserID       uint
	Verbose      bool
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	var userID uint64
	fs.StringVar(&cmd.OutputDir, "output", "", "Directory to write markdown files into (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.Uint64Var(&userID, "user", 0, "User ID to export")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export -output <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export every book's highlights as one markdown file per book.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.UserID = uint(userID)

	if cmd.OutputDir == "" {
		return fmt.Errorf("required flag -output not provided")
	}

	return nil
}

func (cmd *ExportCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	booksRepo := books.NewRepository(db.DB)

	all, err := booksRepo.ListForUserWithHighlights(cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}
	if len(all) == 0 {
		fmt.Println("No books to export")
		return nil
	}

	exports := make([]exporters.BookExport, 0, len(all))
	for _, book := range all {
		exports = append(exports, exporters.FromEntity(book))
	}

	files := exporters.Render(exports)
	if err := exporters.WriteFiles(cmd.OutputDir, files); err != nil {
		return fmt.Errorf("failed to write files: %w", err)
	}

	if cmd.Verbose {
		for _, file := range files {
			fmt.Printf("  wrote %s\n", file.Filename)
		}
	}
	fmt.Printf("Exported %d books to %s\n", len(files), cmd.OutputDir)

	return nil
}
