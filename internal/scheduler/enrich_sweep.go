// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/clipcat/clipcat/internal/entities"
	"github.com/clipcat/clipcat/internal/tasks"
)

// MissingMetadataLister is the slice of the books repository the sweep
// needs.
type MissingMetadataLister interface {
	ListMissingMetadata(limit int) ([]entities.Book, error)
}

// EnrichSweepScheduler periodically enqueues enrichment tasks for books
// that still lack catalog metadata.
type EnrichSweepScheduler struct {
	books      MissingMetadataLister
	taskClient *tasks.Client
	schedule   string
	batch      int

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewEnrichSweepScheduler creates a scheduler. Schedule is standard
// five-field cron syntax; batch caps how many books get queued per sweep.
func NewEnrichSweepScheduler(books MissingMetadataLister, taskClient *tasks.Client, schedule string, batch int) *EnrichSweepScheduler {
	if batch <= 0 {
		batch = 25
	}
	return &EnrichSweepScheduler{
		books:      books,
		taskClient: taskClient,
		schedule:   schedule,
		batch:      batch,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the sweep. Safe to call once.
func (s *EnrichSweepScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return fmt.Errorf("failed to schedule enrichment sweep: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Enrichment sweep scheduled (%s)", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *EnrichSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Println("Enrichment sweep stopped")
}

// runSweep enqueues one enrichment task per book missing metadata.
func (s *EnrichSweepScheduler) runSweep() {
	books, err := s.books.ListMissingMetadata(s.batch)
	if err != nil {
		log.Printf("Enrichment sweep failed to list books: %v", err)
		return
	}
	if len(books) == 0 {
		return
	}

	queued := 0
	for _, book := range books {
		if _, err := s.taskClient.Add(tasks.EnrichBookTask{BookID: book.ID}).Save(); err != nil {
			log.Printf("Enrichment sweep failed to queue book %d: %v", book.ID, err)
			continue
		}
		queued++
	}

	log.Printf("Enrichment sweep queued %d of %d books", queued, len(books))
}
