package game

import (
	"fmt"
	"sort"
	"time"
)

// Ledger is the authoritative economic record. It is not safe for
// concurrent use; the Engine serializes every access.
type Ledger struct {
	balance            float64
	lifetimeEarned     float64
	revenuePerInterval float64
	tier               int
	nextTierThreshold  float64
	unlocked           map[string]struct{}
	lastSavedAt        time.Time
}

func NewLedger(balance float64, now time.Time) *Ledger {
	return &Ledger{
		balance:           finiteOrZero(balance),
		tier:              StartingTier,
		nextTierThreshold: StartingThreshold,
		unlocked:          map[string]struct{}{},
		lastSavedAt:       now,
	}
}

func (l *Ledger) Balance() float64 { return l.balance }
func (l *Ledger) LifetimeEarned() float64 { return l.lifetimeEarned }
func (l *Ledger) RevenuePerInterval() float64 { return l.revenuePerInterval }
func (l *Ledger) Tier() int { return l.tier }
func (l *Ledger) NextTierThreshold() float64 { return l.nextTierThreshold }
func (l *Ledger) LastSavedAt() time.Time { return l.lastSavedAt }

func (l *Ledger) Earn(amount float64) error {
	if !validAmount(amount) {
		return fmt.Errorf("earn %v: %w", amount, ErrInvalidAmount)
	}
	l.balance += amount
	l.lifetimeEarned += amount
	return nil
}

// Spend does not clamp at zero; callers decide whether a purchase is
// affordable before spending.
func (l *Ledger) Spend(amount float64) error {
	if !validAmount(amount) {
		return fmt.Errorf("spend %v: %w", amount, ErrInvalidAmount)
	}
	l.balance -= amount
	return nil
}

// SellProceeds credits the balance without counting toward lifetime
// earnings.
func (l *Ledger) SellProceeds(amount float64) error {
	if !validAmount(amount) {
		return fmt.Errorf("sell proceeds %v: %w", amount, ErrInvalidAmount)
	}
	l.balance += amount
	return nil
}

func (l *Ledger) AdvanceTier(index int, threshold float64) error {
	if index <= l.tier {
		return fmt.Errorf("advance tier %d -> %d: %w", l.tier, index, ErrTierRegression)
	}
	l.tier = index
	l.nextTierThreshold = finiteOrZero(threshold)
	return nil
}

// Unlock reports whether id was newly added.
func (l *Ledger) Unlock(id string) bool {
	if _, ok := l.unlocked[id]; ok {
		return false
	}
	l.unlocked[id] = struct{}{}
	return true
}

func (l *Ledger) IsUnlocked(id string) bool {
	_, ok := l.unlocked[id]
	return ok
}

func (l *Ledger) UnlockedIDs() []string {
	out := make([]string, 0, len(l.unlocked))
	for id := range l.unlocked {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// setRevenueRate is only called with the revenue calculator's output.
func (l *Ledger) setRevenueRate(rate float64) {
	l.revenuePerInterval = finiteOrZero(rate)
}

func (l *Ledger) markSaved(now time.Time) {
	l.lastSavedAt = now
}
