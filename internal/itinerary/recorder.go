package itinerary

import (
	"context"
	"fmt"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// HistoryStore is the slice of the persistence gateway the Recorder needs.
// repo.Gateway implementations satisfy it.
type HistoryStore interface {
	// AppendHistory stores a single history entry.
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)

	// CommitMutation appends entry and then saves plan in one transaction.
	CommitMutation(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error)
}

// Recorder turns applied operations into durable history.
// Call it once per successful Engine.Apply and never after a failed one.
type Recorder struct {
	store HistoryStore
}

// NewRecorder constructs a Recorder writing through store.
func NewRecorder(store HistoryStore) *Recorder {
	return &Recorder{store: store}
}

// Record appends entry on its own, without saving a document.
// Failures are returned wrapping domain.ErrAuditPersistence.
func (r *Recorder) Record(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	stored, err := r.store.AppendHistory(ctx, entry)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("itinerary.Recorder.Record: %w: %w", domain.ErrAuditPersistence, err)
	}
	return stored, nil
}

// Commit persists the history entry and the mutated plan together: the entry
// is appended first, then the plan is saved, both in one gateway transaction.
// On failure the caller must discard plan and reload the persisted copy.
func (r *Recorder) Commit(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
	if entry.PlanID != plan.ID {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf(
			"itinerary.Recorder.Commit: %w: entry belongs to plan %s, not %s",
			domain.ErrAuditPersistence, entry.PlanID, plan.ID)
	}
	savedPlan, savedEntry, err := r.store.CommitMutation(ctx, plan, entry)
	if err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("itinerary.Recorder.Commit: %w: %w", domain.ErrAuditPersistence, err)
	}
	return savedPlan, savedEntry, nil
}
