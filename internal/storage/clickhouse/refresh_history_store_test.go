package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage"
)

var runStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestRefreshHistoryStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRefreshHistoryStore(conn)
	ctx := context.Background()

	// Test empty insert
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	// Test single insert
	records := []*domain.RefreshRecord{
		{
			RunStartedAt: runStart,
			TokenID:      "tok-1",
			Chain:        "ethereum",
			Source:       domain.SourcePrimary,
			Price:        ptr("0.00000008369"),
			Change1h:     ptr(1.25),
			Change24h:    ptr(-3.4),
			Persisted:    true,
			RecordedAt:   runStart.Add(2 * time.Second),
		},
	}

	err = store.InsertBulk(ctx, records)
	require.NoError(t, err)

	// Verify insert
	got, err := store.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tok-1", got[0].TokenID)
	assert.Equal(t, "ethereum", got[0].Chain)
	assert.Equal(t, domain.SourcePrimary, got[0].Source)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, "0.00000008369", *got[0].Price)
	require.NotNil(t, got[0].Change1h)
	assert.Equal(t, 1.25, *got[0].Change1h)
	require.NotNil(t, got[0].Change24h)
	assert.Equal(t, -3.4, *got[0].Change24h)
	assert.True(t, got[0].Persisted)
	assert.True(t, got[0].RunStartedAt.Equal(runStart), "run_started_at round trip")
	assert.True(t, got[0].RecordedAt.Equal(runStart.Add(2*time.Second)), "recorded_at round trip")
}

func TestRefreshHistoryStore_InsertBulk_AbsentFields(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRefreshHistoryStore(conn)
	ctx := context.Background()

	// Synthetic outcomes carry no price and a failed write leaves persisted false.
	records := []*domain.RefreshRecord{
		{
			RunStartedAt: runStart,
			TokenID:      "tok-1",
			Chain:        "bsc",
			Source:       domain.SourceSynthetic,
			Change1h:     ptr(4.2),
			Change24h:    ptr(-9.99),
			Persisted:    false,
			RecordedAt:   runStart.Add(time.Second),
		},
		{
			RunStartedAt: runStart,
			TokenID:      "tok-2",
			Chain:        "solana",
			Source:       domain.SourceSecondary,
			Price:        ptr("1.5"),
			Persisted:    true,
			RecordedAt:   runStart.Add(2 * time.Second),
		},
	}

	err := store.InsertBulk(ctx, records)
	require.NoError(t, err)

	got, err := store.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Price)
	assert.False(t, got[0].Persisted)

	got, err = store.GetByTokenID(ctx, "tok-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Change1h)
	assert.Nil(t, got[0].Change24h)
}

func TestRefreshHistoryStore_InsertBulk_InvalidRecord(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRefreshHistoryStore(conn)
	ctx := context.Background()

	records := []*domain.RefreshRecord{
		{RunStartedAt: runStart, TokenID: "tok-1", Chain: "ethereum", Source: domain.SourcePrimary, RecordedAt: runStart},
		{RunStartedAt: runStart, TokenID: "", Chain: "ethereum", Source: domain.SourcePrimary, RecordedAt: runStart},
	}

	err := store.InsertBulk(ctx, records)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	// Nothing from the batch was written
	got, err := store.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	assert.Empty(t, got)

	records[1] = nil
	err = store.InsertBulk(ctx, records)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestRefreshHistoryStore_GetByTokenID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRefreshHistoryStore(conn)
	ctx := context.Background()

	// Insert records for multiple tokens, out of recording order
	records := []*domain.RefreshRecord{
		{RunStartedAt: runStart, TokenID: "tok-1", Chain: "ethereum", Source: domain.SourceSecondary, Persisted: true, RecordedAt: runStart.Add(5 * time.Second)},
		{RunStartedAt: runStart, TokenID: "tok-2", Chain: "polygon", Source: domain.SourcePrimary, Persisted: true, RecordedAt: runStart.Add(2 * time.Second)},
		{RunStartedAt: runStart, TokenID: "tok-1", Chain: "ethereum", Source: domain.SourcePrimary, Persisted: true, RecordedAt: runStart.Add(1 * time.Second)},
	}

	err := store.InsertBulk(ctx, records)
	require.NoError(t, err)

	// Get only tok-1, ordered by recorded_at
	got, err := store.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.SourcePrimary, got[0].Source)
	assert.Equal(t, domain.SourceSecondary, got[1].Source)
	assert.True(t, got[0].RecordedAt.Before(got[1].RecordedAt))

	// Get non-existent
	got, err = store.GetByTokenID(ctx, "tok-999")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRefreshHistoryStore_AppendsAcrossRuns(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRefreshHistoryStore(conn)
	ctx := context.Background()

	// The archive keeps one row per run, so repeated refreshes of the same
	// token accumulate rather than overwrite.
	for i := 0; i < 3; i++ {
		start := runStart.Add(time.Duration(i) * 5 * time.Minute)
		records := []*domain.RefreshRecord{
			{
				RunStartedAt: start,
				TokenID:      "tok-1",
				Chain:        "ethereum",
				Source:       domain.SourcePrimary,
				Price:        ptr("2.5"),
				Persisted:    true,
				RecordedAt:   start.Add(time.Second),
			},
		}
		err := store.InsertBulk(ctx, records)
		require.NoError(t, err)
	}

	got, err := store.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
