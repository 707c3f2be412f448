package game

import (
	"math"
	"sort"
	"time"
)

// State is one game's mutable economy. It is owned by an Engine and never
// shared without the Engine's lock.
type State struct {
	assets       map[string]AssetType
	assetOrder   []string
	holdings     map[string]Holding
	upgrades     map[string]Upgrade
	upgradeOrder []string
	tiers        []Tier
	achievements []Achievement
	ledger       *Ledger
	market       *Market

	sessionStart time.Time
	lastTick     time.Time
}

func newState(cat Catalog, startingBalance float64, mcfg MarketConfig, rnd Rand, now time.Time) *State {
	s := &State{
		assets:       make(map[string]AssetType, len(cat.Assets)),
		holdings:     map[string]Holding{},
		upgrades:     make(map[string]Upgrade, len(cat.Upgrades)),
		tiers:        append([]Tier(nil), cat.Tiers...),
		achievements: make([]Achievement, 0, len(cat.Achievements)),
		ledger:       NewLedger(startingBalance, now),
		market:       NewMarket(cat.Events, mcfg, rnd, now),
		sessionStart: now,
	}
	for _, a := range cat.Assets {
		if _, dup := s.assets[a.ID]; dup {
			continue
		}
		s.assets[a.ID] = a
		s.assetOrder = append(s.assetOrder, a.ID)
	}
	for _, u := range cat.Upgrades {
		if _, dup := s.upgrades[u.ID]; dup {
			continue
		}
		u.Purchased = false
		s.upgrades[u.ID] = u
		s.upgradeOrder = append(s.upgradeOrder, u.ID)
	}
	sort.SliceStable(s.tiers, func(i, j int) bool { return s.tiers[i].Level < s.tiers[j].Level })
	for _, a := range cat.Achievements {
		a.Completed = false
		a.CompletedAt = nil
		s.achievements = append(s.achievements, a)
	}
	return s
}

// restoreState overlays a snapshot onto a freshly seeded state. Ids the
// catalog no longer knows are dropped.
func restoreState(cat Catalog, snap Snapshot, mcfg MarketConfig, rnd Rand, now time.Time) *State {
	s := newState(cat, 0, mcfg, rnd, now)

	l := s.ledger
	l.balance = float64(snap.Ledger.Balance)
	l.lifetimeEarned = math.Max(0, float64(snap.Ledger.LifetimeEarned))
	l.revenuePerInterval = math.Max(0, float64(snap.Ledger.RevenuePerInterval))
	if tier := intNum(snap.Ledger.Tier); tier >= StartingTier {
		l.tier = tier
	}
	l.nextTierThreshold = float64(snap.Ledger.NextTierThreshold)
	if l.tier == StartingTier && l.nextTierThreshold == 0 {
		l.nextTierThreshold = StartingThreshold
	}
	for _, id := range snap.Ledger.UnlockedIDs {
		l.Unlock(id)
	}
	l.lastSavedAt = snap.LastSavedAt()

	for _, h := range snap.Holdings {
		if _, ok := s.assets[h.TypeID]; !ok {
			continue
		}
		count := intNum(h.Count)
		if count <= 0 {
			continue
		}
		level := intNum(h.Level)
		if level < 1 {
			level = 1
		}
		s.holdings[h.TypeID] = Holding{TypeID: h.TypeID, Count: count, Level: level}
	}
	for _, us := range snap.Upgrades {
		u, ok := s.upgrades[us.ID]
		if !ok {
			continue
		}
		u.Purchased = us.Purchased
		if us.Unlocked || us.Purchased {
			u.Unlock = nil
		}
		s.upgrades[us.ID] = u
	}
	byID := make(map[string]AchievementSnapshot, len(snap.Achievements))
	for _, as := range snap.Achievements {
		byID[as.ID] = as
	}
	for i := range s.achievements {
		as, ok := byID[s.achievements[i].ID]
		if !ok || !as.Completed {
			continue
		}
		s.achievements[i].Completed = true
		if at := fromMillis(float64(as.CompletedAtMs)); !at.IsZero() {
			s.achievements[i].CompletedAt = &at
		}
	}
	s.market.restore(snap.Market.Events, fromMillis(float64(snap.Market.LastEventTimeMs)))
	return s
}

// snapshot captures the state for persistence. The revenue rate is
// floored on the way out.
func (s *State) snapshot(now time.Time) Snapshot {
	l := s.ledger
	snap := Snapshot{
		Version:   SnapshotVersion,
		SavedAtMs: msNum(now),
		Ledger: LedgerSnapshot{
			Balance:            Num(l.balance),
			LifetimeEarned:     Num(l.lifetimeEarned),
			RevenuePerInterval: Num(math.Floor(l.revenuePerInterval)),
			Tier:               Num(l.tier),
			NextTierThreshold:  Num(l.nextTierThreshold),
			UnlockedIDs:        l.UnlockedIDs(),
			LastSavedAtMs:      msNum(l.lastSavedAt),
		},
		Market: MarketSnapshot{LastEventTimeMs: msNum(s.market.LastEventTime())},
	}
	for _, id := range s.assetOrder {
		if h, ok := s.holdings[id]; ok {
			snap.Holdings = append(snap.Holdings, HoldingSnapshot{TypeID: id, Count: Num(h.Count), Level: Num(h.Level)})
		}
	}
	for _, id := range s.upgradeOrder {
		u := s.upgrades[id]
		snap.Upgrades = append(snap.Upgrades, UpgradeSnapshot{ID: id, Purchased: u.Purchased, Unlocked: u.Unlock == nil})
	}
	for _, a := range s.achievements {
		as := AchievementSnapshot{ID: a.ID, Completed: a.Completed}
		if a.CompletedAt != nil {
			as.CompletedAtMs = msNum(*a.CompletedAt)
		}
		snap.Achievements = append(snap.Achievements, as)
	}
	for _, ev := range s.market.Events() {
		es := EventSnapshot{ID: ev.ID, Active: ev.Active}
		if ev.StartTime != nil {
			es.StartMs = msNum(*ev.StartTime)
		}
		snap.Market.Events = append(snap.Market.Events, es)
	}
	return snap
}

func (s *State) currentTier() (Tier, bool) {
	for _, t := range s.tiers {
		if t.Level == s.ledger.tier {
			return t, true
		}
	}
	return Tier{}, false
}

func (s *State) nextTier() (Tier, bool) {
	for _, t := range s.tiers {
		if t.Level == s.ledger.tier+1 {
			return t, true
		}
	}
	return Tier{}, false
}

// progressionBonus is the current tier's revenue multiplier plus every
// completed multiplier achievement.
func (s *State) progressionBonus() float64 {
	bonus := 0.0
	if t, ok := s.currentTier(); ok {
		bonus += t.Rewards.RevenueMultiplier
	}
	for _, a := range s.achievements {
		if a.Completed && a.Reward.Kind == RewardMultiplier {
			bonus += a.Reward.Amount
		}
	}
	return bonus
}

func (s *State) computeRevenue() float64 {
	return ComputeRevenueRate(s.holdings, s.assets, s.upgrades, s.progressionBonus(), s.market.RevenueBonus())
}

func (s *State) refreshRevenue() {
	s.ledger.setRevenueRate(s.computeRevenue())
}

func (s *State) totalAssets() int {
	total := 0
	for _, h := range s.holdings {
		total += h.Count
	}
	return total
}

func (s *State) purchasedUpgrades() int {
	n := 0
	for _, u := range s.upgrades {
		if u.Purchased {
			n++
		}
	}
	return n
}

func (s *State) price(typeID string) float64 {
	a, ok := s.assets[typeID]
	if !ok {
		return 0
	}
	return math.Round(a.BasePrice * s.market.PriceMultiplier(typeID))
}

func (s *State) available(typeID string) bool {
	a, ok := s.assets[typeID]
	if !ok {
		return false
	}
	if a.Unlock == nil || a.Unlock.Currency <= 0 {
		return true
	}
	return s.ledger.balance >= a.Unlock.Currency || s.ledger.IsUnlocked(typeID)
}

func (s *State) ledgerView(running bool) LedgerView {
	l := s.ledger
	return LedgerView{
		Balance:            l.balance,
		RevenuePerInterval: l.revenuePerInterval,
		LifetimeEarned:     l.lifetimeEarned,
		TierIndex:          l.tier,
		NextTierThreshold:  l.nextTierThreshold,
		UnlockedIDs:        l.UnlockedIDs(),
		LastSavedAt:        l.lastSavedAt,
		LastTickAt:         s.lastTick,
		Running:            running,
	}
}

func (s *State) assetsView() AssetsView {
	view := AssetsView{Catalog: make([]AssetView, 0, len(s.assetOrder)), Holdings: []Holding{}}
	for _, id := range s.assetOrder {
		price := s.price(id)
		av := AssetView{
			AssetType: s.assets[id],
			Price:     price,
			SellValue: SellValue(price),
			Available: s.available(id),
		}
		if h, ok := s.holdings[id]; ok {
			av.Count = h.Count
			av.Level = h.Level
			av.LevelCost = LevelUpCost(av.BasePrice, h.Level)
			view.Holdings = append(view.Holdings, h)
		}
		view.Catalog = append(view.Catalog, av)
	}
	return view
}

func (s *State) upgradesView() []Upgrade {
	out := make([]Upgrade, 0, len(s.upgradeOrder))
	for _, id := range s.upgradeOrder {
		u := s.upgrades[id]
		u.AppliesTo = append([]string(nil), u.AppliesTo...)
		if u.Unlock != nil {
			c := *u.Unlock
			u.Unlock = &c
		}
		out = append(out, u)
	}
	return out
}

func (s *State) marketView() MarketView {
	mods := s.market.Modifiers()
	mods.ProgressionBonus = s.progressionBonus()
	active := s.market.ActiveIDs()
	if active == nil {
		active = []string{}
	}
	return MarketView{
		Events:             s.market.Events(),
		ActiveEventIDs:     active,
		EffectiveModifiers: mods,
		LastEventTime:      s.market.LastEventTime(),
		CooldownSeconds:    s.market.Cooldown().Seconds(),
	}
}

func (s *State) achievementsView() []Achievement {
	out := make([]Achievement, len(s.achievements))
	for i, a := range s.achievements {
		if a.CompletedAt != nil {
			t := *a.CompletedAt
			a.CompletedAt = &t
		}
		out[i] = a
	}
	return out
}

func (s *State) tiersView() []TierView {
	out := make([]TierView, 0, len(s.tiers))
	for _, t := range s.tiers {
		out = append(out, TierView{Tier: t, Reached: t.Level <= s.ledger.tier, Current: t.Level == s.ledger.tier})
	}
	return out
}
