package game

import "time"

type AssetType struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	BasePrice   float64      `json:"base_price"`
	BaseRevenue float64      `json:"base_revenue"`
	Unlock      *AssetUnlock `json:"unlock,omitempty"`
}

type AssetUnlock struct {
	Currency float64 `json:"currency"`
}

type Holding struct {
	TypeID string `json:"type_id"`
	Count  int    `json:"count"`
	Level  int    `json:"level"`
}

// UnlockCondition is a conjunction of whichever clauses are set.
type UnlockCondition struct {
	Currency    float64        `json:"currency,omitempty"`
	RevenueRate float64        `json:"revenue_rate,omitempty"`
	OwnAll      []string       `json:"own_all,omitempty"`
	OwnAtLeast  map[string]int `json:"own_at_least,omitempty"`
	TotalAssets int            `json:"total_assets,omitempty"`
	Description string         `json:"description,omitempty"`
}

type Upgrade struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Cost        float64          `json:"cost"`
	Multiplier  float64          `json:"multiplier"`
	AppliesTo   []string         `json:"applies_to"`
	Purchased   bool             `json:"purchased"`
	Unlock      *UnlockCondition `json:"unlock,omitempty"`
}

func (u Upgrade) Applies(typeID string) bool {
	for _, id := range u.AppliesTo {
		if id == typeID {
			return true
		}
	}
	return false
}

type MarketEffects struct {
	GlobalRevenueBonus    float64            `json:"global_revenue_bonus,omitempty"`
	GlobalPriceMultiplier float64            `json:"global_price_multiplier,omitempty"`
	PriceMultiplier       map[string]float64 `json:"price_multiplier,omitempty"`
	RevenueBonus          map[string]float64 `json:"revenue_bonus,omitempty"`
}

type MarketEvent struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	DurationSeconds int           `json:"duration_seconds"`
	Active          bool          `json:"active"`
	StartTime       *time.Time    `json:"start_time,omitempty"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	Effects         MarketEffects `json:"effects"`
}

func (e MarketEvent) Duration() time.Duration {
	return time.Duration(e.DurationSeconds) * time.Second
}

type TierReward struct {
	CurrencyBonus     float64  `json:"currency_bonus,omitempty"`
	RevenueMultiplier float64  `json:"revenue_multiplier,omitempty"`
	UnlockAssets      []string `json:"unlock_assets,omitempty"`
	UnlockUpgrades    []string `json:"unlock_upgrades,omitempty"`
}

type Tier struct {
	Level              int        `json:"level"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	RevenueRequirement float64    `json:"revenue_requirement"`
	AssetRequirement   int        `json:"asset_requirement,omitempty"`
	Rewards            TierReward `json:"rewards"`
}

type RequirementKind string

const (
	RequireCurrency RequirementKind = "currency"
	RequireRevenue  RequirementKind = "revenue"
	RequireAssets   RequirementKind = "equipment"
	RequireUpgrades RequirementKind = "upgrades"
	RequireTime     RequirementKind = "time"
	RequireTier     RequirementKind = "tier"
)

type Requirement struct {
	Kind    RequirementKind `json:"kind"`
	Target  float64         `json:"target"`
	AssetID string          `json:"asset_id,omitempty"`
}

type RewardKind string

const (
	RewardCurrency   RewardKind = "currency"
	RewardMultiplier RewardKind = "multiplier"
)

type Reward struct {
	Kind   RewardKind `json:"kind"`
	Amount float64    `json:"amount"`
}

type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Requirement Requirement `json:"requirement"`
	Reward      Reward      `json:"reward"`
	Completed   bool        `json:"completed"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

type LedgerView struct {
	Balance            float64   `json:"balance"`
	RevenuePerInterval float64   `json:"revenue_per_interval"`
	LifetimeEarned     float64   `json:"lifetime_earned"`
	TierIndex          int       `json:"tier_index"`
	NextTierThreshold  float64   `json:"next_tier_threshold"`
	UnlockedIDs        []string  `json:"unlocked_ids"`
	LastSavedAt        time.Time `json:"last_saved_at"`
	LastTickAt         time.Time `json:"last_tick_at"`
	Running            bool      `json:"running"`
}

type AssetView struct {
	AssetType
	Price     float64 `json:"price"`
	SellValue float64 `json:"sell_value"`
	Available bool    `json:"available"`
	Count     int     `json:"count"`
	Level     int     `json:"level"`
	LevelCost float64 `json:"level_cost,omitempty"`
}

type AssetsView struct {
	Catalog  []AssetView `json:"catalog"`
	Holdings []Holding   `json:"holdings"`
}

type Modifiers struct {
	RevenueBonus      float64            `json:"revenue_bonus"`
	PriceMultiplier   float64            `json:"price_multiplier"`
	AssetPrice        map[string]float64 `json:"asset_price,omitempty"`
	AssetRevenueBonus map[string]float64 `json:"asset_revenue_bonus,omitempty"`
	ProgressionBonus  float64            `json:"progression_bonus"`
}

type MarketView struct {
	Events             []MarketEvent `json:"events"`
	ActiveEventIDs     []string      `json:"active_event_ids"`
	EffectiveModifiers Modifiers     `json:"effective_modifiers"`
	LastEventTime      time.Time     `json:"last_event_time"`
	CooldownSeconds    float64       `json:"cooldown_seconds"`
}

type TierView struct {
	Tier
	Reached bool `json:"reached"`
	Current bool `json:"current"`
}

type PurchaseResult struct {
	TypeID  string  `json:"type_id"`
	Price   float64 `json:"price"`
	Count   int     `json:"count"`
	Level   int     `json:"level"`
	Balance float64 `json:"balance"`
}

type SaleResult struct {
	TypeID   string  `json:"type_id"`
	Proceeds float64 `json:"proceeds"`
	Count    int     `json:"count"`
	Balance  float64 `json:"balance"`
}

type UpgradeResult struct {
	UpgradeID          string  `json:"upgrade_id"`
	Cost               float64 `json:"cost"`
	Balance            float64 `json:"balance"`
	RevenuePerInterval float64 `json:"revenue_per_interval"`
}
