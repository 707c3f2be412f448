package game

import (
	"fmt"
	"log/slog"
	"time"
)

type PromotionKind string

const (
	PromotedAchievement PromotionKind = "achievement"
	PromotedUpgrade     PromotionKind = "upgrade"
	PromotedTier        PromotionKind = "tier"
)

// Promotion records one at-most-once transition made by the Evaluator.
type Promotion struct {
	Kind PromotionKind `json:"kind"`
	ID   string        `json:"id"`
	Name string        `json:"name"`
	// Bonus is the currency credited as part of the promotion, if any.
	Bonus float64 `json:"bonus,omitempty"`
}

func (p Promotion) Message() string {
	switch p.Kind {
	case PromotedTier:
		return fmt.Sprintf("Business level up! You are now a %s", p.Name)
	case PromotedUpgrade:
		return fmt.Sprintf("New upgrade available: %s", p.Name)
	default:
		return fmt.Sprintf("Achievement unlocked: %s", p.Name)
	}
}

// Evaluator promotes tiers, upgrades and achievements whose predicates
// hold. A failure in one item is logged and does not stop the others.
type Evaluator struct {
	log *slog.Logger
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{log: logger}
}

// Evaluate runs one pass in a fixed order: tiers, upgrades, achievements.
func (e *Evaluator) Evaluate(s *State, now time.Time) []Promotion {
	var out []Promotion
	for {
		next, ok := s.nextTier()
		if !ok {
			break
		}
		var p Promotion
		advanced := e.guard("tier", next.Name, func() (bool, error) {
			var err error
			p, err = e.advanceTier(s, next)
			return err == nil && p.ID != "", err
		})
		if !advanced {
			break
		}
		out = append(out, p)
	}
	for _, id := range s.upgradeOrder {
		u := s.upgrades[id]
		if u.Unlock == nil {
			continue
		}
		if e.guard("upgrade", id, func() (bool, error) { return upgradeUnlocked(s, *u.Unlock) }) {
			u.Unlock = nil
			s.upgrades[id] = u
			out = append(out, Promotion{Kind: PromotedUpgrade, ID: id, Name: u.Name})
		}
	}
	for i := range s.achievements {
		if p, ok := e.completeAchievement(s, i, now, false); ok {
			out = append(out, p)
		}
	}
	return out
}

// EvaluateTimed only looks at achievements driven by elapsed session time.
func (e *Evaluator) EvaluateTimed(s *State, now time.Time) []Promotion {
	var out []Promotion
	for i := range s.achievements {
		if p, ok := e.completeAchievement(s, i, now, true); ok {
			out = append(out, p)
		}
	}
	return out
}

func (e *Evaluator) completeAchievement(s *State, i int, now time.Time, timedOnly bool) (Promotion, bool) {
	a := &s.achievements[i]
	if a.Completed {
		return Promotion{}, false
	}
	if timedOnly != (a.Requirement.Kind == RequireTime) {
		return Promotion{}, false
	}
	met := e.guard("achievement", a.ID, func() (bool, error) { return achievementMet(s, a.Requirement, now) })
	if !met {
		return Promotion{}, false
	}
	at := now
	a.Completed = true
	a.CompletedAt = &at
	p := Promotion{Kind: PromotedAchievement, ID: a.ID, Name: a.Name}
	if a.Reward.Kind == RewardCurrency && a.Reward.Amount > 0 {
		if err := s.ledger.Earn(a.Reward.Amount); err != nil {
			e.log.Warn("achievement reward rejected", "achievement_id", a.ID, "err", err)
		} else {
			p.Bonus = a.Reward.Amount
		}
	}
	return p, true
}

func (e *Evaluator) guard(kind, id string, check func() (bool, error)) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("unlock check panicked", "kind", kind, "id", id, "panic", r)
			ok = false
		}
	}()
	met, err := check()
	if err != nil {
		e.log.Warn("unlock check failed", "kind", kind, "id", id, "err", err)
		return false
	}
	return met
}

// advanceTier moves the ledger up one tier and grants its rewards. A
// rejected currency bonus is logged and the unlocks still apply.
func (e *Evaluator) advanceTier(s *State, next Tier) (Promotion, error) {
	if s.ledger.revenuePerInterval < next.RevenueRequirement {
		return Promotion{}, nil
	}
	if next.AssetRequirement > 0 && s.totalAssets() < next.AssetRequirement {
		return Promotion{}, nil
	}
	threshold := 0.0
	for _, t := range s.tiers {
		if t.Level == next.Level+1 {
			threshold = t.RevenueRequirement
		}
	}
	if err := s.ledger.AdvanceTier(next.Level, threshold); err != nil {
		return Promotion{}, err
	}
	p := Promotion{Kind: PromotedTier, ID: fmt.Sprintf("tier-%d", next.Level), Name: next.Name}
	if bonus := next.Rewards.CurrencyBonus; bonus > 0 {
		if err := s.ledger.Earn(bonus); err != nil {
			e.log.Warn("tier bonus rejected", "tier", next.Level, "bonus", bonus, "err", err)
		} else {
			p.Bonus = bonus
		}
	}
	for _, id := range next.Rewards.UnlockAssets {
		s.ledger.Unlock(id)
	}
	for _, id := range next.Rewards.UnlockUpgrades {
		s.ledger.Unlock(id)
		if u, ok := s.upgrades[id]; ok && u.Unlock != nil {
			u.Unlock = nil
			s.upgrades[id] = u
		}
	}
	return p, nil
}

func upgradeUnlocked(s *State, c UnlockCondition) (bool, error) {
	if c.Currency > 0 && s.ledger.balance < c.Currency {
		return false, nil
	}
	if c.RevenueRate > 0 && s.ledger.revenuePerInterval < c.RevenueRate {
		return false, nil
	}
	for _, id := range c.OwnAll {
		if s.holdings[id].Count <= 0 {
			return false, nil
		}
	}
	for id, n := range c.OwnAtLeast {
		if s.holdings[id].Count < n {
			return false, nil
		}
	}
	if c.TotalAssets > 0 && s.totalAssets() < c.TotalAssets {
		return false, nil
	}
	return true, nil
}

func achievementMet(s *State, r Requirement, now time.Time) (bool, error) {
	var value float64
	switch r.Kind {
	case RequireCurrency:
		value = s.ledger.lifetimeEarned
	case RequireRevenue:
		value = s.ledger.revenuePerInterval
	case RequireAssets:
		if r.AssetID != "" {
			value = float64(s.holdings[r.AssetID].Count)
		} else {
			value = float64(s.totalAssets())
		}
	case RequireUpgrades:
		value = float64(s.purchasedUpgrades())
	case RequireTime:
		if s.sessionStart.IsZero() {
			return false, nil
		}
		value = now.Sub(s.sessionStart).Seconds()
	case RequireTier:
		value = float64(s.ledger.tier)
	default:
		return false, fmt.Errorf("unknown requirement kind %q", r.Kind)
	}
	return value >= r.Target, nil
}
