// Package refresh orchestrates recurring-pattern recomputation across all
// merchant groups: load transactions, detect, reconcile against persisted
// patterns, upsert.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sagebudget/sage/internal/recur"
	"github.com/sagebudget/sage/internal/service"
)

// ProgressFunc is called after each merchant group completes.
type ProgressFunc func(done, total int)

// Result summarizes one refresh pass.
type Result struct {
	GroupsProcessed  int
	GroupsFailed     int
	PatternsUpserted int
}

// Refresher runs the detection engine over every merchant group in storage.
// Merchant groups are independent, so they are processed by a bounded worker
// pool; within a group the steps stay strictly sequential.
type Refresher struct {
	storage  service.Storage
	detector *recur.Detector
	progress ProgressFunc
	workers  int
}

// NewRefresher creates a refresher. workers <= 0 falls back to serial
// processing. progress may be nil.
func NewRefresher(storage service.Storage, detector *recur.Detector, workers int, progress ProgressFunc) *Refresher {
	if workers < 1 {
		workers = 1
	}
	return &Refresher{
		storage:  storage,
		detector: detector,
		workers:  workers,
		progress: progress,
	}
}

// Run recomputes patterns for every merchant group as of the given time.
// A pathological group logs a warning and is skipped; it never aborts the
// batch. Run only returns an error when the batch itself cannot proceed
// (storage unavailable, context canceled).
func (r *Refresher) Run(ctx context.Context, asOf time.Time) (Result, error) {
	groups, err := r.storage.ListMerchantGroups(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list merchant groups: %w", err)
	}

	slog.Info("Starting recurring-pattern refresh",
		"merchant_groups", len(groups),
		"workers", r.workers)

	var (
		mu     sync.Mutex
		result Result
		done   int
	)

	groupCh := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for groupID := range groupCh {
				upserted, err := r.refreshGroup(ctx, groupID, asOf)

				mu.Lock()
				done++
				if err != nil {
					result.GroupsFailed++
					slog.Warn("Failed to refresh merchant group",
						"merchant_group_id", groupID, "error", err)
				} else {
					result.GroupsProcessed++
					result.PatternsUpserted += upserted
				}
				if r.progress != nil {
					r.progress(done, len(groups))
				}
				mu.Unlock()
			}
		}()
	}

	for _, groupID := range groups {
		select {
		case <-ctx.Done():
			close(groupCh)
			wg.Wait()
			return result, ctx.Err()
		case groupCh <- groupID:
		}
	}
	close(groupCh)
	wg.Wait()

	slog.Info("Recurring-pattern refresh complete",
		"processed", result.GroupsProcessed,
		"failed", result.GroupsFailed,
		"patterns", result.PatternsUpserted)
	return result, nil
}

// refreshGroup runs one merchant group through detect → reconcile → upsert.
func (r *Refresher) refreshGroup(ctx context.Context, groupID string, asOf time.Time) (int, error) {
	txns, err := r.storage.GetTransactionsByMerchantGroup(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}

	drafts, err := r.detector.Detect(ctx, txns, asOf)
	if err != nil {
		return 0, fmt.Errorf("detection failed: %w", err)
	}

	persisted, err := r.storage.GetPatternsByMerchantGroup(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to load persisted patterns: %w", err)
	}

	final := r.detector.Reconcile(drafts, persisted, asOf)
	if len(final) == 0 {
		return 0, nil
	}

	if err := r.storage.UpsertPatterns(ctx, groupID, final); err != nil {
		return 0, fmt.Errorf("failed to upsert patterns: %w", err)
	}
	return len(final), nil
}
