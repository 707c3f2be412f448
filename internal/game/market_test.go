package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketNotEligibleBeforeCooldown(t *testing.T) {
	rnd := &scriptedRand{fallback: 0}
	m := NewMarket(testEvents(), MarketConfig{Cooldown: time.Minute, Probability: 0.05}, rnd, epoch)

	_, ok := m.TryTrigger(epoch.Add(59 * time.Second))
	assert.False(t, ok)
	assert.False(t, m.Eligible())
	assert.Equal(t, 0, rnd.Calls())
}

func TestMarketTriggerActivatesAndStamps(t *testing.T) {
	rnd := &scriptedRand{values: []float64{0.01, 0.99}}
	m := NewMarket(testEvents(), MarketConfig{Cooldown: time.Minute, Probability: 0.05}, rnd, epoch)
	now := epoch.Add(time.Minute)

	ev, ok := m.TryTrigger(now)
	require.True(t, ok)
	assert.Equal(t, "slump", ev.ID)
	require.NotNil(t, ev.StartTime)
	require.NotNil(t, ev.EndTime)
	assert.Equal(t, now, *ev.StartTime)
	assert.Equal(t, now.Add(90*time.Second), *ev.EndTime)
	assert.Equal(t, now, m.LastEventTime())
	assert.False(t, m.Eligible())
	assert.Equal(t, []string{"slump"}, m.ActiveIDs())
}

func TestMarketStaysEligibleUntilDrawSucceeds(t *testing.T) {
	rnd := &scriptedRand{values: []float64{0.5, 0.9, 0.04, 0}}
	m := NewMarket(testEvents(), MarketConfig{Cooldown: time.Minute, Probability: 0.05}, rnd, epoch)

	now := epoch.Add(time.Minute)
	_, ok := m.TryTrigger(now)
	assert.False(t, ok)
	assert.True(t, m.Eligible())
	_, ok = m.TryTrigger(now.Add(time.Second))
	assert.False(t, ok)
	ev, ok := m.TryTrigger(now.Add(2 * time.Second))
	require.True(t, ok)
	assert.Equal(t, "boom", ev.ID)
}

func TestMarketExcludesActiveEventsFromSelection(t *testing.T) {
	rnd := &scriptedRand{fallback: 0}
	m := NewMarket(testEvents(), MarketConfig{Cooldown: time.Second, Probability: 0.05}, rnd, epoch)

	_, err := m.Activate("boom", epoch)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		ev, ok := m.TryTrigger(epoch.Add(time.Duration(i) * time.Second))
		if !ok {
			continue
		}
		assert.Equal(t, "slump", ev.ID, "active event must never be reselected")
	}
	assert.ElementsMatch(t, []string{"boom", "slump"}, m.ActiveIDs())

	calls := rnd.Calls()
	_, ok := m.TryTrigger(epoch.Add(time.Hour))
	assert.False(t, ok)
	assert.Equal(t, calls, rnd.Calls(), "no draw when every event is active")

	_, err = m.Activate("boom", epoch)
	assert.True(t, errors.Is(err, ErrEventActive))
	_, err = m.Activate("nope", epoch)
	assert.True(t, errors.Is(err, ErrUnknownEvent))
}

func TestMarketExpiresAtEndTime(t *testing.T) {
	m := NewMarket(testEvents(), MarketConfig{}, &scriptedRand{}, epoch)
	_, err := m.Activate("boom", epoch)
	require.NoError(t, err)

	assert.Empty(t, m.Expire(epoch.Add(119*time.Second)))
	ended := m.Expire(epoch.Add(120 * time.Second))
	require.Len(t, ended, 1)
	assert.Equal(t, "boom", ended[0].ID)

	for _, ev := range m.Events() {
		assert.False(t, ev.Active)
		assert.Nil(t, ev.StartTime)
		assert.Nil(t, ev.EndTime)
	}
}

func TestMarketEffects(t *testing.T) {
	events := append(testEvents(), MarketEvent{
		ID: "shortage", DurationSeconds: 60,
		Effects: MarketEffects{PriceMultiplier: map[string]float64{"excavator": 1.5}, RevenueBonus: map[string]float64{"excavator": -0.2}},
	})
	m := NewMarket(events, MarketConfig{}, &scriptedRand{}, epoch)
	_, _ = m.Activate("boom", epoch)
	_, _ = m.Activate("slump", epoch)
	_, _ = m.Activate("shortage", epoch)

	assert.InDelta(t, 0.10, m.RevenueBonus(), 1e-9)
	assert.InDelta(t, 1.5*0.8, m.PriceMultiplier("excavator"), 1e-9)
	assert.InDelta(t, 0.8, m.PriceMultiplier("generator"), 1e-9)

	mods := m.Modifiers()
	assert.InDelta(t, 0.8, mods.PriceMultiplier, 1e-9)
	assert.InDelta(t, 1.5, mods.AssetPrice["excavator"], 1e-9)
	assert.InDelta(t, -0.2, mods.AssetRevenueBonus["excavator"], 1e-9)
}
