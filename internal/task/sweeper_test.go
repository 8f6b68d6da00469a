package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/diagramgpt/diagramgpt/internal/config"
	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// sweepTarget records DeleteOlderThan cutoffs for both store interfaces.
type sweepTarget struct {
	cutoffs []time.Time
	deleted int64
	err     error
}

func (s *sweepTarget) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.deleted, s.err
}

// diagramSweepTarget adapts sweepTarget to store.DiagramStore.
type diagramSweepTarget struct{ sweepTarget }

func (d *diagramSweepTarget) Create(_ context.Context, _ *domain.Diagram) error { return nil }
func (d *diagramSweepTarget) GetByID(_ context.Context, _ uuid.UUID) (*domain.Diagram, error) {
	return nil, store.ErrDiagramNotFound
}
func (d *diagramSweepTarget) FindByPromptHash(_ context.Context, _ string, _ domain.Format, _ string) (*domain.Diagram, error) {
	return nil, store.ErrDiagramNotFound
}
func (d *diagramSweepTarget) List(_ context.Context, _ string, _, _ int) ([]*domain.Diagram, error) {
	return nil, nil
}
func (d *diagramSweepTarget) Count(_ context.Context, _ string) (int, error) { return 0, nil }
func (d *diagramSweepTarget) Delete(_ context.Context, _ uuid.UUID) error { return nil }
func (d *diagramSweepTarget) WithTx(_ store.DBTX) store.DiagramStore      { return d }

// logSweepTarget adapts sweepTarget to store.GenerationLogStore.
type logSweepTarget struct{ sweepTarget }

func (l *logSweepTarget) Create(_ context.Context, _ *domain.GenerationLog) error { return nil }
func (l *logSweepTarget) List(_ context.Context, _, _ int) ([]*domain.GenerationLog, error) {
	return nil, nil
}
func (l *logSweepTarget) Stats(_ context.Context, _ string, _ int) (*domain.UsageStats, error) {
	return &domain.UsageStats{}, nil
}
func (l *logSweepTarget) WithTx(_ store.DBTX) store.GenerationLogStore { return l }

func TestSweepUsesConfiguredRetention(t *testing.T) {
	t.Parallel()

	diagrams := &diagramSweepTarget{sweepTarget{deleted: 3}}
	logs := &logSweepTarget{sweepTarget{deleted: 5}}

	cfg := config.TaskConfig{
		SweepIntervalMinutes: 60,
		DiagramRetentionDays: 30,
		LogRetentionDays:     90,
	}

	sweeper := NewRetentionSweeper(nil, diagrams, logs, cfg, nil)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return fixed }

	sweeper.Sweep(context.Background())

	assert.Equal(t, []time.Time{fixed.AddDate(0, 0, -30)}, diagrams.cutoffs)
	assert.Equal(t, []time.Time{fixed.AddDate(0, 0, -90)}, logs.cutoffs)
}

func TestSweepSkipsDisabledRetention(t *testing.T) {
	t.Parallel()

	diagrams := &diagramSweepTarget{}
	logs := &logSweepTarget{}

	cfg := config.TaskConfig{
		SweepIntervalMinutes: 60,
		DiagramRetentionDays: 0,
		LogRetentionDays:     90,
	}

	sweeper := NewRetentionSweeper(nil, diagrams, logs, cfg, nil)
	sweeper.Sweep(context.Background())

	assert.Empty(t, diagrams.cutoffs)
	assert.Len(t, logs.cutoffs, 1)
}

func TestStartStopLifecycle(t *testing.T) {
	t.Parallel()

	diagrams := &diagramSweepTarget{}
	logs := &logSweepTarget{}

	cfg := config.TaskConfig{
		SweepIntervalMinutes: 60,
		DiagramRetentionDays: 30,
		LogRetentionDays:     90,
	}

	sweeper := NewRetentionSweeper(nil, diagrams, logs, cfg, nil)
	sweeper.Start()

	// Stop must return promptly without a tick having fired.
	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop in time")
	}
}
