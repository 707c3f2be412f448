package game

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testState(t *testing.T) *State {
	t.Helper()
	return newState(DefaultCatalog(), StartingBalance, MarketConfig{}, &scriptedRand{fallback: 0.99}, epoch)
}

func achievementByID(t *testing.T, s *State, id string) Achievement {
	t.Helper()
	for _, a := range s.achievements {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("achievement %q not found", id)
	return Achievement{}
}

func TestAchievementCompletesOnceAndRewardsOnce(t *testing.T) {
	s := testState(t)
	ev := NewEvaluator(quietLogger())
	s.holdings["excavator"] = Holding{TypeID: "excavator", Count: 1, Level: 1}

	promos := ev.Evaluate(s, epoch)
	require.NotEmpty(t, promos)
	first := achievementByID(t, s, "firstPurchase")
	require.True(t, first.Completed)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, epoch, *first.CompletedAt)
	assert.Equal(t, StartingBalance+50, s.ledger.Balance())

	s.holdings["excavator"] = Holding{TypeID: "excavator", Count: 4, Level: 1}
	later := epoch.Add(time.Hour)
	for _, p := range ev.Evaluate(s, later) {
		assert.NotEqual(t, "firstPurchase", p.ID)
	}
	again := achievementByID(t, s, "firstPurchase")
	assert.Equal(t, epoch, *again.CompletedAt)
	assert.Equal(t, StartingBalance+50, s.ledger.Balance())
}

func TestMultiplierAchievementFeedsProgressionBonus(t *testing.T) {
	s := testState(t)
	ev := NewEvaluator(quietLogger())
	s.holdings["excavator"] = Holding{TypeID: "excavator", Count: 5, Level: 1}

	ev.Evaluate(s, epoch)
	require.True(t, achievementByID(t, s, "fleetManager").Completed)
	assert.InDelta(t, 0.05, s.progressionBonus(), 1e-9)

	balance := s.ledger.Balance()
	s.refreshRevenue()
	assert.InDelta(t, 10*1.05, s.ledger.RevenuePerInterval(), 1e-9)
	assert.Equal(t, balance, s.ledger.Balance(), "multiplier rewards never touch the ledger balance")
}

func TestUpgradeUnlockIsConjunction(t *testing.T) {
	s := testState(t)
	ev := NewEvaluator(quietLogger())
	s.upgrades["custom"] = Upgrade{
		ID: "custom", Name: "Custom", Cost: 10, Multiplier: 1.5,
		Unlock: &UnlockCondition{Currency: 50, OwnAll: []string{"excavator", "generator"}, OwnAtLeast: map[string]int{"excavator": 2}, TotalAssets: 3},
	}
	s.upgradeOrder = append(s.upgradeOrder, "custom")

	s.holdings["excavator"] = Holding{TypeID: "excavator", Count: 2, Level: 1}
	ev.Evaluate(s, epoch)
	assert.NotNil(t, s.upgrades["custom"].Unlock, "missing generator keeps it locked")

	s.holdings["generator"] = Holding{TypeID: "generator", Count: 1, Level: 1}
	promos := ev.Evaluate(s, epoch)
	assert.Nil(t, s.upgrades["custom"].Unlock)
	assert.Contains(t, promos, Promotion{Kind: PromotedUpgrade, ID: "custom", Name: "Custom"})

	s.holdings = map[string]Holding{}
	ev.Evaluate(s, epoch)
	assert.Nil(t, s.upgrades["custom"].Unlock, "cleared unlock conditions never come back")
}

func TestTierAdvanceGrantsRewards(t *testing.T) {
	s := testState(t)
	ev := NewEvaluator(quietLogger())
	s.holdings["scissorlift"] = Holding{TypeID: "scissorlift", Count: 5, Level: 1}
	s.refreshRevenue()
	require.GreaterOrEqual(t, s.ledger.RevenuePerInterval(), 50.0)

	before := s.ledger.Balance()
	promos := ev.Evaluate(s, epoch)

	assert.Equal(t, 2, s.ledger.Tier())
	assert.Equal(t, 200.0, s.ledger.NextTierThreshold())
	assert.True(t, s.ledger.IsUnlocked("bulldozer"))
	assert.True(t, s.ledger.IsUnlocked("trencher"))
	assert.True(t, achievementByID(t, s, "businessLevel2").Completed)
	assert.Equal(t, PromotedTier, promos[0].Kind)
	assert.Greater(t, s.ledger.Balance(), before+500-1)
	assert.InDelta(t, 0.05+0.05, s.progressionBonus(), 1e-9)
}

func TestTierNeedsAssetCount(t *testing.T) {
	s := testState(t)
	ev := NewEvaluator(quietLogger())
	s.holdings["scissorlift"] = Holding{TypeID: "scissorlift", Count: 1, Level: 50}
	s.refreshRevenue()
	require.GreaterOrEqual(t, s.ledger.RevenuePerInterval(), 50.0)

	ev.Evaluate(s, epoch)
	assert.Equal(t, 1, s.ledger.Tier())
}

func TestTimedAchievementOnlyInTimedPass(t *testing.T) {
	s := testState(t)
	ev := NewEvaluator(quietLogger())
	later := epoch.Add(5 * time.Minute)

	ev.Evaluate(s, later)
	assert.False(t, achievementByID(t, s, "timeCommitment").Completed)

	promos := ev.EvaluateTimed(s, later)
	require.Len(t, promos, 1)
	assert.Equal(t, "timeCommitment", promos[0].ID)
	assert.Equal(t, StartingBalance+150, s.ledger.Balance())
}

func TestBrokenItemDoesNotBlockOthers(t *testing.T) {
	s := testState(t)
	ev := NewEvaluator(quietLogger())
	broken := Achievement{ID: "broken", Name: "Broken", Requirement: Requirement{Kind: "mystery", Target: 1}}
	s.achievements = append([]Achievement{broken}, s.achievements...)
	s.holdings["excavator"] = Holding{TypeID: "excavator", Count: 1, Level: 1}

	ev.Evaluate(s, epoch)
	assert.False(t, achievementByID(t, s, "broken").Completed)
	assert.True(t, achievementByID(t, s, "firstPurchase").Completed)
}

func TestTierAdvanceKeepsUnlocksWhenBonusRejected(t *testing.T) {
	cat := Catalog{
		Assets: []AssetType{
			{ID: "excavator", Name: "Excavator", BasePrice: 100, BaseRevenue: 2},
			{ID: "crane", Name: "Crane", BasePrice: 5000, BaseRevenue: 100, Unlock: &AssetUnlock{Currency: 5000}},
		},
		Upgrades: []Upgrade{
			{ID: "cranePro", Name: "Crane Pro", Cost: 10, Multiplier: 2, AppliesTo: []string{"crane"}, Unlock: &UnlockCondition{TotalAssets: 100}},
		},
		Tiers: []Tier{
			{Level: 1, Name: "Startup"},
			{Level: 2, Name: "Yard", RevenueRequirement: 50, Rewards: TierReward{
				CurrencyBonus:  math.Inf(1),
				UnlockAssets:   []string{"crane"},
				UnlockUpgrades: []string{"cranePro"},
			}},
		},
	}
	s := newState(cat, StartingBalance, MarketConfig{}, &scriptedRand{fallback: 0.99}, epoch)
	s.ledger.revenuePerInterval = 60

	promos := NewEvaluator(quietLogger()).Evaluate(s, epoch)

	require.Len(t, promos, 1)
	assert.Equal(t, PromotedTier, promos[0].Kind)
	assert.Equal(t, 0.0, promos[0].Bonus)
	assert.Equal(t, 2, s.ledger.Tier())
	assert.Equal(t, StartingBalance, s.ledger.Balance())
	assert.True(t, s.ledger.IsUnlocked("crane"))
	assert.True(t, s.available("crane"))
	assert.Nil(t, s.upgrades["cranePro"].Unlock)
}
