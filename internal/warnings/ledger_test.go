package warnings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock advances one second per call
func steppingClock() func() time.Time {
	t := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		count int64
		want  Tier
	}{
		{0, TierClean},
		{1, TierLow},
		{2, TierLowMedium},
		{3, TierHigh},
		{4, TierHigh},
		{5, TierCritical},
		{9, TierCritical},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.count), func(t *testing.T) {
			if got := TierFor(tt.count); got != tt.want {
				t.Errorf("TierFor(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestTierAtLeast(t *testing.T) {
	assert.True(t, TierHigh.AtLeast(TierHigh))
	assert.True(t, TierCritical.AtLeast(TierHigh))
	assert.False(t, TierLowMedium.AtLeast(TierHigh))
	assert.False(t, Tier("bogus").AtLeast(TierClean))
}

func TestTierRecommendations(t *testing.T) {
	assert.Empty(t, TierLowMedium.Recommendations())
	assert.Contains(t, TierHigh.Recommendations(), "Issue final warning")
	assert.Contains(t, TierCritical.Recommendations(), "Consider temporary ban or kick")
}

func TestRecordAndCount(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(database.NewMemoryStore[models.Warning]()).WithClock(steppingClock())

	w, err := ledger.Record(ctx, "g", "u", "mod", "spam")
	require.NoError(t, err)
	assert.True(t, w.Active)

	n, err := ledger.CountActive(ctx, "g", "u")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	other, err := ledger.CountActive(ctx, "g", "someone-else")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestHistoryRoundTrip(t *testing.T) {
	for n := 0; n <= 15; n++ {
		t.Run(fmt.Sprintf("%d warnings", n), func(t *testing.T) {
			ctx := context.Background()
			ledger := NewLedger(database.NewMemoryStore[models.Warning]()).WithClock(steppingClock())

			for i := 0; i < n; i++ {
				_, err := ledger.Record(ctx, "g", "u", "mod", fmt.Sprintf("reason %d", i))
				require.NoError(t, err)
			}

			h, err := ledger.History(ctx, "g", "u", DefaultRecentLimit)
			require.NoError(t, err)

			assert.Equal(t, int64(n), h.Total)
			assert.Equal(t, TierFor(int64(n)), h.Tier)

			wantShown := n
			if wantShown > DefaultRecentLimit {
				wantShown = DefaultRecentLimit
			}
			require.Len(t, h.Recent, wantShown)
			assert.Equal(t, n > DefaultRecentLimit, h.Truncated())

			for i := 1; i < len(h.Recent); i++ {
				assert.True(t, h.Recent[i-1].CreatedAt.After(h.Recent[i].CreatedAt), "not newest first at %d", i)
			}
			if n > 0 {
				assert.Equal(t, fmt.Sprintf("reason %d", n-1), h.Recent[0].Reason)
			}
		})
	}
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(database.NewMemoryStore[models.Warning]())

	w, err := ledger.Record(ctx, "g", "u", "mod", "spam")
	require.NoError(t, err)

	require.NoError(t, ledger.Revoke(ctx, "g", w.ID.Hex()))

	n, err := ledger.CountActive(ctx, "g", "u")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, ledger.Revoke(ctx, "g", w.ID.Hex()), ErrWarningNotFound)
	assert.ErrorIs(t, ledger.Revoke(ctx, "g", "not-an-id"), ErrInvalidWarningID)
}

func TestRevokeOtherGuild(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(database.NewMemoryStore[models.Warning]())

	w, err := ledger.Record(ctx, "g", "u", "mod", "spam")
	require.NoError(t, err)

	assert.ErrorIs(t, ledger.Revoke(ctx, "other", w.ID.Hex()), ErrWarningNotFound)
}
