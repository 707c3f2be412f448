package game

import (
	"errors"
	"math"
	"time"
)

const (
	StartingBalance   = 100.0
	StartingTier      = 1
	StartingThreshold = 50.0

	LevelRevenueStep  = 0.1
	SellRefundRatio   = 0.5
	LevelUpCostFactor = 2.0

	OfflineEfficiency  = 0.8
	MaxOfflineDuration = time.Hour

	EventTriggerProbability = 0.05
	DefaultEventCooldown    = 60 * time.Second
)

var (
	ErrInvalidAmount     = errors.New("amount must be a finite, non-negative number")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownAsset      = errors.New("unknown asset type")
	ErrAssetLocked       = errors.New("asset type is locked")
	ErrNotOwned          = errors.New("asset not owned")
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrUpgradeLocked     = errors.New("upgrade is locked")
	ErrUpgradeOwned      = errors.New("upgrade already purchased")
	ErrUnknownEvent      = errors.New("unknown market event")
	ErrEventActive       = errors.New("market event already active")
	ErrTierRegression    = errors.New("progression tier can only increase")
	ErrNotRunning        = errors.New("game is not running")
	ErrAlreadyRunning    = errors.New("game is already running")
	ErrNoSnapshot        = errors.New("no saved snapshot")
)

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// DisplayBalance interpolates the balance between ticks for presentation.
// It never feeds back into the ledger.
func DisplayBalance(lastTick time.Time, balance, revenuePerInterval float64, now time.Time) float64 {
	elapsed := now.Sub(lastTick).Seconds()
	if elapsed < 0 || lastTick.IsZero() {
		elapsed = 0
	}
	return math.Floor(balance + revenuePerInterval*elapsed)
}

// LevelUpCost is the price of raising a holding from its current level.
func LevelUpCost(basePrice float64, level int) float64 {
	if level < 1 {
		level = 1
	}
	return basePrice * float64(level) * LevelUpCostFactor
}

func SellValue(price float64) float64 {
	return math.Floor(price * SellRefundRatio)
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms float64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}
