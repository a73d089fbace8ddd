package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/rundir/pkg/journal"
)

// PruneRecorder receives the number of journal records removed.
type PruneRecorder interface {
	RecordJournalPrune(removed int64)
}

// JournalPruner removes journal records older than MaxAge.
type JournalPruner struct {
	store    journal.Store
	maxAge   time.Duration
	now      func() time.Time
	recorder PruneRecorder
	logger   *slog.Logger
}

// NewJournalPruner creates a pruner. A zero maxAge keeps records forever.
func NewJournalPruner(store journal.Store, maxAge time.Duration, recorder PruneRecorder) *JournalPruner {
	return &JournalPruner{
		store:    store,
		maxAge:   maxAge,
		now:      time.Now,
		recorder: recorder,
		logger:   slog.Default().With("component", "schedule.pruner"),
	}
}

// Prune deletes records that started before now minus MaxAge and returns
// how many were removed.
func (p *JournalPruner) Prune(ctx context.Context) (int64, error) {
	if p == nil || p.store == nil || p.maxAge <= 0 {
		return 0, nil
	}

	cutoff := p.now().Add(-p.maxAge)
	deleted, err := p.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}

	if p.recorder != nil && deleted > 0 {
		p.recorder.RecordJournalPrune(deleted)
	}

	if deleted > 0 {
		p.logger.Info("journal pruned",
			"deleted_count", deleted,
			"cutoff", cutoff.UTC().Format(time.RFC3339),
		)
	} else {
		p.logger.Debug("journal pruning completed, no records deleted")
	}

	return deleted, nil
}
