package itinerary_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/itinerary"
)

// mockHistoryStore is a hand-written test double for itinerary.HistoryStore.
type mockHistoryStore struct {
	appendHistory  func(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)
	commitMutation func(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error)
}

func (m *mockHistoryStore) AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	return m.appendHistory(ctx, entry)
}
func (m *mockHistoryStore) CommitMutation(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
	return m.commitMutation(ctx, plan, entry)
}

var _ itinerary.HistoryStore = (*mockHistoryStore)(nil)

func TestRecorder_Commit_PassesPlanAndEntryOnce(t *testing.T) {
	p := planFixture()
	next, entry, err := newEngine().Apply(p, domain.Operation{Type: domain.OpUpdate, DayIndex: 1, ItemIndex: 0, Field: "cost", NewValue: 2000})
	require.NoError(t, err)

	calls := 0
	store := &mockHistoryStore{
		commitMutation: func(_ context.Context, gotPlan domain.Plan, gotEntry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
			calls++
			assert.Equal(t, next, gotPlan)
			assert.Equal(t, entry, gotEntry)
			return gotPlan, gotEntry, nil
		},
	}

	savedPlan, savedEntry, err := itinerary.NewRecorder(store).Commit(context.Background(), next, entry)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, next.TotalCost, savedPlan.TotalCost)
	assert.Equal(t, entry.ID, savedEntry.ID)
}

func TestRecorder_Commit_StoreFailure(t *testing.T) {
	dbErr := errors.New("connection refused")
	store := &mockHistoryStore{
		commitMutation: func(_ context.Context, _ domain.Plan, _ domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
			return domain.Plan{}, domain.HistoryEntry{}, dbErr
		},
	}
	p := planFixture()

	_, _, err := itinerary.NewRecorder(store).Commit(context.Background(), p, domain.HistoryEntry{PlanID: p.ID})

	assert.ErrorIs(t, err, domain.ErrAuditPersistence)
	assert.ErrorIs(t, err, dbErr)
}

func TestRecorder_Commit_MismatchedPlan(t *testing.T) {
	store := &mockHistoryStore{
		commitMutation: func(_ context.Context, _ domain.Plan, _ domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
			t.Fatal("store must not be called for a mismatched entry")
			return domain.Plan{}, domain.HistoryEntry{}, nil
		},
	}

	_, _, err := itinerary.NewRecorder(store).Commit(context.Background(), planFixture(), domain.HistoryEntry{PlanID: uuid.New()})

	assert.ErrorIs(t, err, domain.ErrAuditPersistence)
}

func TestRecorder_Record(t *testing.T) {
	entry := domain.HistoryEntry{ID: uuid.New(), PlanID: uuid.New(), Operation: domain.OpDelete}
	store := &mockHistoryStore{
		appendHistory: func(_ context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error) {
			return e, nil
		},
	}

	got, err := itinerary.NewRecorder(store).Record(context.Background(), entry)

	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestRecorder_Record_StoreFailure(t *testing.T) {
	store := &mockHistoryStore{
		appendHistory: func(_ context.Context, _ domain.HistoryEntry) (domain.HistoryEntry, error) {
			return domain.HistoryEntry{}, errors.New("disk full")
		},
	}

	_, err := itinerary.NewRecorder(store).Record(context.Background(), domain.HistoryEntry{})

	assert.ErrorIs(t, err, domain.ErrAuditPersistence)
}

func TestSnowflakeSequencer_Increasing(t *testing.T) {
	seq, err := itinerary.NewSnowflakeSequencer(1)
	require.NoError(t, err)

	prev := seq.Next()
	for i := 0; i < 1000; i++ {
		next := seq.Next()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestSnowflakeSequencer_InvalidNode(t *testing.T) {
	_, err := itinerary.NewSnowflakeSequencer(5000)

	assert.Error(t, err)
}
