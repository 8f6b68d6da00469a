// Package task contains background maintenance jobs.
package task

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/config"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// RetentionSweeper periodically deletes diagrams and generation logs older
// than their configured retention windows. A retention of zero days disables
// sweeping for that entity.
type RetentionSweeper struct {
	db         *sql.DB
	diagrams   store.DiagramStore
	logs       store.GenerationLogStore
	interval   time.Duration
	diagramAge time.Duration
	logAge     time.Duration
	logger     *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	now        func() time.Time
}

// NewRetentionSweeper creates a sweeper from the task configuration. With a
// non-nil db, both retention deletes run inside a single transaction; a nil
// db runs them independently.
func NewRetentionSweeper(
	db *sql.DB,
	diagrams store.DiagramStore,
	logs store.GenerationLogStore,
	cfg config.TaskConfig,
	log *slog.Logger,
) *RetentionSweeper {
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RetentionSweeper{
		db:         db,
		diagrams:   diagrams,
		logs:       logs,
		interval:   time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
		diagramAge: time.Duration(cfg.DiagramRetentionDays) * 24 * time.Hour,
		logAge:     time.Duration(cfg.LogRetentionDays) * 24 * time.Hour,
		logger:     log.With(slog.String("component", "retention_sweeper")),
		ctx:        ctx,
		cancelFunc: cancel,
		now:        time.Now,
	}
}

// Start launches the background sweep loop. A zero interval disables the
// sweeper entirely.
func (s *RetentionSweeper) Start() {
	if s.interval <= 0 {
		s.logger.Info("retention sweeper disabled")
		return
	}

	s.wg.Add(1)
	go s.run()

	s.logger.Info("retention sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("diagram_retention", s.diagramAge),
		slog.Duration("log_retention", s.logAge))
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *RetentionSweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *RetentionSweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug("retention sweeper stopping")
			return
		case <-ticker.C:
			s.Sweep(s.ctx)
		}
	}
}

// Sweep runs one retention pass. Exported so operators can trigger it
// directly and tests can exercise it without the ticker.
func (s *RetentionSweeper) Sweep(ctx context.Context) {
	if s.db == nil {
		s.sweepOnce(ctx, s.diagrams, s.logs)
		return
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		s.sweepOnce(ctx, s.diagrams.WithTx(tx), s.logs.WithTx(tx))
		return nil
	})
	if err != nil {
		s.logger.Error("retention sweep transaction failed", slog.String("error", err.Error()))
	}
}

func (s *RetentionSweeper) sweepOnce(ctx context.Context, diagrams store.DiagramStore, logs store.GenerationLogStore) {
	now := s.now().UTC()

	if s.diagramAge > 0 {
		deleted, err := diagrams.DeleteOlderThan(ctx, now.Add(-s.diagramAge))
		if err != nil {
			s.logger.Error("diagram retention sweep failed", slog.String("error", err.Error()))
		} else if deleted > 0 {
			s.logger.Info("swept old diagrams", slog.Int64("deleted", deleted))
		}
	}

	if s.logAge > 0 {
		deleted, err := logs.DeleteOlderThan(ctx, now.Add(-s.logAge))
		if err != nil {
			s.logger.Error("generation log retention sweep failed", slog.String("error", err.Error()))
		} else if deleted > 0 {
			s.logger.Info("swept old generation logs", slog.Int64("deleted", deleted))
		}
	}
}
