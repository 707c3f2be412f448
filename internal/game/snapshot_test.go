package game

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumDecodesLeniently(t *testing.T) {
	tests := []struct {
		raw  string
		want Num
	}{
		{raw: `12.5`, want: 12.5},
		{raw: `"42"`, want: 42},
		{raw: `" 7 "`, want: 7},
		{raw: `null`, want: 0},
		{raw: `"lots"`, want: 0},
		{raw: `"NaN"`, want: 0},
		{raw: `true`, want: 0},
		{raw: `{"x":1}`, want: 0},
	}
	for _, tc := range tests {
		var n Num
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &n), tc.raw)
		assert.Equal(t, tc.want, n, tc.raw)
	}
}

func TestDecodeSnapshotCoercesBadFields(t *testing.T) {
	raw := `{
		"version": "1",
		"ledger": {"balance": "oops", "lifetime_earned": null, "revenue_per_interval": 12, "tier": "3", "last_saved_at_ms": "x"},
		"holdings": [
			{"type_id": "excavator", "count": "4", "level": null},
			{"type_id": "generator", "count": 0, "level": 2},
			{"type_id": "unknown", "count": 3, "level": 1}
		]
	}`
	snap, err := DecodeSnapshot([]byte(raw))
	require.NoError(t, err)

	s := restoreState(DefaultCatalog(), snap, MarketConfig{}, &scriptedRand{}, epoch)
	assert.Equal(t, 0.0, s.ledger.Balance())
	assert.Equal(t, 0.0, s.ledger.LifetimeEarned())
	assert.Equal(t, 12.0, s.ledger.RevenuePerInterval())
	assert.Equal(t, 3, s.ledger.Tier())
	assert.True(t, s.ledger.LastSavedAt().IsZero())
	require.Len(t, s.holdings, 1)
	assert.Equal(t, Holding{TypeID: "excavator", Count: 4, Level: 1}, s.holdings["excavator"])
}

func TestDecodeSnapshotEmpty(t *testing.T) {
	_, err := DecodeSnapshot(nil)
	assert.True(t, errors.Is(err, ErrNoSnapshot))
}

func TestSnapshotRestoresState(t *testing.T) {
	s := testState(t)
	ev := NewEvaluator(quietLogger())
	s.holdings["excavator"] = Holding{TypeID: "excavator", Count: 3, Level: 2}
	u := s.upgrades["betterBuckets"]
	u.Purchased = true
	s.upgrades["betterBuckets"] = u
	ev.Evaluate(s, epoch)
	s.refreshRevenue()
	_, err := s.market.Activate("constructionBoom", epoch)
	require.NoError(t, err)

	data, err := EncodeSnapshot(s.snapshot(epoch))
	require.NoError(t, err)
	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)

	restored := restoreState(DefaultCatalog(), snap, MarketConfig{}, &scriptedRand{}, epoch.Add(time.Minute))
	assert.Equal(t, s.ledger.Balance(), restored.ledger.Balance())
	assert.Equal(t, s.holdings, restored.holdings)
	assert.True(t, restored.upgrades["betterBuckets"].Purchased)
	assert.True(t, achievementByID(t, restored, "firstPurchase").Completed)
	assert.Equal(t, []string{"constructionBoom"}, restored.market.ActiveIDs())
	for _, e := range restored.market.Events() {
		if e.ID == "constructionBoom" {
			assert.Equal(t, e.StartTime.Add(e.Duration()), *e.EndTime)
		}
	}
	assert.Equal(t, float64(int(s.ledger.RevenuePerInterval())), restored.ledger.RevenuePerInterval(), "persisted rate is floored")
}
