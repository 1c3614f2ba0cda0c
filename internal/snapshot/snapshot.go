// Package snapshot periodically exports every project's graph as JSONL to
// one or more destinations (S3-compatible object storage, local files).
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meulenbelt/tendergraph/internal/store"
)

// Destination is the interface for a snapshot target (S3, local directory).
type Destination interface {
	// Write sends one project's JSONL payload to the destination.
	Write(ctx context.Context, projectID string, data []byte) error
}

// Scheduler runs periodic snapshots to one or more destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from the store to the given
// destinations at the specified interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic snapshots. It runs an initial snapshot immediately,
// then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current snapshot (if any)
// to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	// Run once immediately at startup.
	s.snapshotOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.snapshotOnce(ctx)
		}
	}
}

func (s *Scheduler) snapshotOnce(ctx context.Context) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		s.logger.Error("snapshot list projects failed", "err", err)
		return
	}

	var totalBytes int
	for _, projectID := range projects {
		var buf bytes.Buffer
		if err := WriteJSONL(ctx, s.store, projectID, &buf); err != nil {
			s.logger.Error("snapshot export failed", "project", projectID, "err", err)
			continue
		}
		data := buf.Bytes()
		totalBytes += len(data)

		for i, dest := range s.destinations {
			if err := dest.Write(ctx, projectID, data); err != nil {
				s.logger.Error("snapshot destination write failed",
					"project", projectID, "destination", fmt.Sprintf("%d", i), "err", err)
			}
		}
	}

	s.logger.Info("snapshot completed",
		"projects", len(projects), "destinations", len(s.destinations), "bytes", totalBytes)
}
