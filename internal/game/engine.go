package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxSettlePasses = 16

type Config struct {
	TickEvery         time.Duration
	SaveEvery         time.Duration
	MarketCheckEvery  time.Duration
	TimedCheckEvery   time.Duration
	EventCooldown     time.Duration
	EventProbability  float64
	OfflineCap        time.Duration
	OfflineEfficiency float64
	StartingBalance   float64
}

func DefaultConfig() Config {
	return Config{
		TickEvery:         time.Second,
		SaveEvery:         10 * time.Second,
		MarketCheckEvery:  time.Second,
		TimedCheckEvery:   time.Second,
		EventCooldown:     DefaultEventCooldown,
		EventProbability:  EventTriggerProbability,
		OfflineCap:        MaxOfflineDuration,
		OfflineEfficiency: OfflineEfficiency,
		StartingBalance:   StartingBalance,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickEvery <= 0 {
		c.TickEvery = d.TickEvery
	}
	if c.SaveEvery <= 0 {
		c.SaveEvery = d.SaveEvery
	}
	if c.MarketCheckEvery <= 0 {
		c.MarketCheckEvery = d.MarketCheckEvery
	}
	if c.TimedCheckEvery <= 0 {
		c.TimedCheckEvery = d.TimedCheckEvery
	}
	if c.EventCooldown <= 0 {
		c.EventCooldown = d.EventCooldown
	}
	if c.EventProbability <= 0 || c.EventProbability > 1 {
		c.EventProbability = d.EventProbability
	}
	if c.OfflineCap <= 0 {
		c.OfflineCap = d.OfflineCap
	}
	if c.OfflineEfficiency <= 0 || c.OfflineEfficiency > 1 {
		c.OfflineEfficiency = d.OfflineEfficiency
	}
	if !validAmount(c.StartingBalance) {
		c.StartingBalance = d.StartingBalance
	}
	return c
}

type Deps struct {
	Store     Store
	Clock     Clock
	Scheduler Scheduler
	Rand      Rand
	Notifier  Notifier
	Logger    *slog.Logger
	Catalog   *Catalog
}

// Engine owns one game and serializes every timer callback and command
// through a single mutex.
type Engine struct {
	cfg     Config
	catalog Catalog
	store   Store
	clock   Clock
	sched   Scheduler
	rand    Rand
	notify  Notifier
	log     *slog.Logger
	eval    *Evaluator

	mu         sync.Mutex
	state      *State
	running    bool
	gen        uint64
	handles    []Handle
	lastSave   time.Time
	sessionID  string
	persistCtx context.Context
	snapSeq    uint64

	// saveMu orders store writes. persistedSeq is the sequence of the
	// newest snapshot written or clear applied; older snapshots are dropped.
	saveMu       sync.Mutex
	persistedSeq uint64
}

func NewEngine(cfg Config, deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = RealClock{}
	}
	sched := deps.Scheduler
	if sched == nil {
		sched = NewTickerScheduler()
	}
	rnd := deps.Rand
	if rnd == nil {
		rnd = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	cat := DefaultCatalog()
	if deps.Catalog != nil {
		cat = *deps.Catalog
	}
	return &Engine{
		cfg:        cfg.withDefaults(),
		catalog:    cat,
		store:      deps.Store,
		clock:      clock,
		sched:      sched,
		rand:       &lockedRand{src: rnd},
		notify:     notifier,
		log:        logger,
		eval:       NewEvaluator(logger),
		persistCtx: context.Background(),
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) marketConfig() MarketConfig {
	return MarketConfig{Cooldown: e.cfg.EventCooldown, Probability: e.cfg.EventProbability}
}

// CatchUpEarnings is the one-time offline credit: elapsed time since the
// last save, clamped to [0, limit], times the rate and efficiency, floored.
func CatchUpEarnings(lastSaved, now time.Time, rate float64, limit time.Duration, efficiency float64) float64 {
	if lastSaved.IsZero() || !validAmount(rate) {
		return 0
	}
	elapsed := now.Sub(lastSaved)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > limit {
		elapsed = limit
	}
	return math.Floor(elapsed.Seconds() * rate * efficiency)
}

// Start loads the saved game when there is no in-memory one, credits
// offline earnings and begins the tick, market and timed-check timers.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	now := e.clock.Now()
	var notes []notice

	if e.state == nil {
		e.state = e.load(ctx, now)
	}
	s := e.state
	if earned := CatchUpEarnings(s.ledger.lastSavedAt, now, math.Floor(s.ledger.revenuePerInterval), e.cfg.OfflineCap, e.cfg.OfflineEfficiency); earned > 0 {
		if err := s.ledger.Earn(earned); err != nil {
			e.log.Warn("offline earnings rejected", "amount", earned, "err", err)
		} else {
			notes = append(notes, notice{fmt.Sprintf("Welcome back! You earned $%.0f while you were away.", earned), SeveritySuccess})
			e.log.Info("offline earnings credited", "amount", earned, "since", s.ledger.lastSavedAt)
		}
	}

	s.sessionStart = now
	s.lastTick = now
	notes = append(notes, e.settleLocked(now)...)

	e.gen++
	gen := e.gen
	e.running = true
	e.sessionID = uuid.NewString()
	e.persistCtx = context.WithoutCancel(ctx)
	e.handles = []Handle{
		e.sched.Schedule(e.cfg.TickEvery, func() { e.tick(gen) }),
		e.sched.Schedule(e.cfg.MarketCheckEvery, func() { e.marketCheck(gen) }),
		e.sched.Schedule(e.cfg.TimedCheckEvery, func() { e.timedCheck(gen) }),
	}
	e.lastSave = now
	s.ledger.markSaved(now)
	snap, seq := e.snapshotLocked(now)
	sessionID := e.sessionID
	e.mu.Unlock()

	e.log.Info("game started", "session_id", sessionID, "balance", snap.Ledger.Balance, "tier", snap.Ledger.Tier)
	e.publish(notes)
	e.persist(ctx, snap, seq)
	return nil
}

func (e *Engine) load(ctx context.Context, now time.Time) *State {
	fresh := func() *State {
		return newState(e.catalog, e.cfg.StartingBalance, e.marketConfig(), e.rand, now)
	}
	if e.store == nil {
		return fresh()
	}
	snap, err := e.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			e.log.Warn("load snapshot failed, starting fresh", "err", err)
		}
		return fresh()
	}
	s := restoreState(e.catalog, snap, e.marketConfig(), e.rand, now)
	e.log.Info("snapshot loaded", "saved_at", snap.LastSavedAt(), "balance", float64(snap.Ledger.Balance))
	return s
}

// Stop cancels every timer and persists the game, reporting the store
// error if any. A callback already waiting on the lock returns without
// effect.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	e.cancelLocked()
	now := e.clock.Now()
	e.state.ledger.markSaved(now)
	e.lastSave = now
	snap, seq := e.snapshotLocked(now)
	sessionID := e.sessionID
	e.mu.Unlock()

	e.log.Info("game stopped", "session_id", sessionID)
	if err := e.save(ctx, snap, seq); err != nil {
		e.log.Error("final save failed", "session_id", sessionID, "err", err)
		return fmt.Errorf("final save: %w", err)
	}
	return nil
}

func (e *Engine) cancelLocked() {
	for _, h := range e.handles {
		e.sched.Cancel(h)
	}
	e.handles = nil
	e.running = false
	e.gen++
}

// Reset stops the game, clears the store and reseeds every entity. The
// engine is left stopped.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.cancelLocked()
	}
	now := e.clock.Now()
	e.state = newState(e.catalog, e.cfg.StartingBalance, e.marketConfig(), e.rand, now)
	e.snapSeq++
	clearSeq := e.snapSeq
	e.mu.Unlock()

	e.log.Info("game reset")
	e.notify.Notify("Game reset. Starting over with a fresh yard.", SeverityInfo)
	if e.store == nil {
		return nil
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if clearSeq > e.persistedSeq {
		e.persistedSeq = clearSeq
	}
	if err := e.store.Clear(ctx); err != nil {
		e.log.Error("clear snapshot failed", "err", err)
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// Checkpoint persists the current game immediately and reports the store
// error, if any.
func (e *Engine) Checkpoint(ctx context.Context) error {
	e.mu.Lock()
	if e.state == nil {
		e.mu.Unlock()
		return ErrNotRunning
	}
	now := e.clock.Now()
	e.state.ledger.markSaved(now)
	e.lastSave = now
	snap, seq := e.snapshotLocked(now)
	e.mu.Unlock()

	if err := e.save(ctx, snap, seq); err != nil {
		e.log.Error("checkpoint failed", "err", err)
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if !e.running || e.gen != gen {
		e.mu.Unlock()
		return
	}
	now := e.clock.Now()
	s := e.state
	s.refreshRevenue()
	if elapsed := now.Sub(s.lastTick).Seconds(); elapsed > 0 {
		if earned := math.Floor(s.ledger.revenuePerInterval * elapsed); earned > 0 {
			if err := s.ledger.Earn(earned); err != nil {
				e.log.Warn("tick earnings rejected", "amount", earned, "err", err)
			}
		}
	}
	s.lastTick = now
	notes := e.settleLocked(now)

	var (
		snap *Snapshot
		seq  uint64
	)
	if now.Sub(e.lastSave) >= e.cfg.SaveEvery {
		e.lastSave = now
		s.ledger.markSaved(now)
		var sn Snapshot
		sn, seq = e.snapshotLocked(now)
		snap = &sn
	}
	ctx := e.persistCtx
	e.mu.Unlock()

	e.publish(notes)
	if snap != nil {
		e.persist(ctx, *snap, seq)
	}
}

func (e *Engine) marketCheck(gen uint64) {
	e.mu.Lock()
	if !e.running || e.gen != gen {
		e.mu.Unlock()
		return
	}
	now := e.clock.Now()
	s := e.state
	var notes []notice
	ended := s.market.Expire(now)
	for _, ev := range ended {
		notes = append(notes, notice{fmt.Sprintf("Market event ended: %s", ev.Name), SeverityInfo})
	}
	ev, triggered := s.market.TryTrigger(now)
	if triggered {
		severity := SeverityInfo
		if ev.Effects.GlobalRevenueBonus < 0 {
			severity = SeverityWarning
		}
		notes = append(notes, notice{fmt.Sprintf("Market event: %s. %s", ev.Name, ev.Description), severity})
		e.log.Info("market event started", "event_id", ev.ID, "ends_at", ev.EndTime)
	}
	if len(ended) > 0 || triggered {
		notes = append(notes, e.settleLocked(now)...)
	}
	e.mu.Unlock()
	e.publish(notes)
}

func (e *Engine) timedCheck(gen uint64) {
	e.mu.Lock()
	if !e.running || e.gen != gen {
		e.mu.Unlock()
		return
	}
	now := e.clock.Now()
	var notes []notice
	if promos := e.eval.EvaluateTimed(e.state, now); len(promos) > 0 {
		notes = promotionNotices(promos)
		notes = append(notes, e.settleLocked(now)...)
	}
	e.mu.Unlock()
	e.publish(notes)
}

// settleLocked refreshes the revenue rate and re-runs the evaluator until
// no further promotion happens.
func (e *Engine) settleLocked(now time.Time) []notice {
	var notes []notice
	for pass := 0; pass < maxSettlePasses; pass++ {
		e.state.refreshRevenue()
		promos := e.eval.Evaluate(e.state, now)
		if len(promos) == 0 {
			return notes
		}
		for _, p := range promos {
			e.log.Info("promotion", "kind", string(p.Kind), "id", p.ID, "bonus", p.Bonus)
		}
		notes = append(notes, promotionNotices(promos)...)
	}
	e.state.refreshRevenue()
	return notes
}

func promotionNotices(promos []Promotion) []notice {
	out := make([]notice, 0, len(promos))
	for _, p := range promos {
		out = append(out, notice{p.Message(), SeveritySuccess})
	}
	return out
}

func (e *Engine) publish(notes []notice) {
	for _, n := range notes {
		e.notify.Notify(n.message, n.severity)
	}
}

// snapshotLocked captures the state and stamps it with the next save
// sequence. Callers hold e.mu.
func (e *Engine) snapshotLocked(now time.Time) (Snapshot, uint64) {
	e.snapSeq++
	return e.state.snapshot(now), e.snapSeq
}

// save writes snap unless a newer snapshot or a reset already reached the
// store.
func (e *Engine) save(ctx context.Context, snap Snapshot, seq uint64) error {
	if e.store == nil {
		return nil
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if seq <= e.persistedSeq {
		e.log.Debug("stale snapshot skipped", "seq", seq, "persisted_seq", e.persistedSeq)
		return nil
	}
	if err := e.store.Save(ctx, snap); err != nil {
		return err
	}
	e.persistedSeq = seq
	return nil
}

func (e *Engine) persist(ctx context.Context, snap Snapshot, seq uint64) {
	if err := e.save(ctx, snap, seq); err != nil {
		e.log.Warn("save snapshot failed", "err", err)
	}
}

// command runs fn against the live state and then the commit pipeline.
func (e *Engine) command(fn func(s *State, now time.Time) error) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	now := e.clock.Now()
	if err := fn(e.state, now); err != nil {
		e.mu.Unlock()
		return err
	}
	notes := e.settleLocked(now)
	e.mu.Unlock()
	e.publish(notes)
	return nil
}

func (e *Engine) BuyAsset(typeID string) (PurchaseResult, error) {
	var res PurchaseResult
	err := e.command(func(s *State, now time.Time) error {
		if _, ok := s.assets[typeID]; !ok {
			return fmt.Errorf("%s: %w", typeID, ErrUnknownAsset)
		}
		if !s.available(typeID) {
			return fmt.Errorf("%s: %w", typeID, ErrAssetLocked)
		}
		price := s.price(typeID)
		if s.ledger.balance < price {
			return fmt.Errorf("%s costs %.0f: %w", typeID, price, ErrInsufficientFunds)
		}
		if err := s.ledger.Spend(price); err != nil {
			return err
		}
		h, owned := s.holdings[typeID]
		if !owned {
			h = Holding{TypeID: typeID, Level: 1}
		}
		h.Count++
		s.holdings[typeID] = h
		res = PurchaseResult{TypeID: typeID, Price: price, Count: h.Count, Level: h.Level}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}
	res.Balance = e.balance()
	return res, nil
}

// SellAsset sells one unit. Selling the last unit removes the holding, so
// its level is lost.
func (e *Engine) SellAsset(typeID string) (SaleResult, error) {
	var res SaleResult
	err := e.command(func(s *State, now time.Time) error {
		if _, ok := s.assets[typeID]; !ok {
			return fmt.Errorf("%s: %w", typeID, ErrUnknownAsset)
		}
		h, owned := s.holdings[typeID]
		if !owned {
			return fmt.Errorf("%s: %w", typeID, ErrNotOwned)
		}
		proceeds := SellValue(s.price(typeID))
		if err := s.ledger.SellProceeds(proceeds); err != nil {
			return err
		}
		h.Count--
		if h.Count <= 0 {
			delete(s.holdings, typeID)
			h.Count = 0
		} else {
			s.holdings[typeID] = h
		}
		res = SaleResult{TypeID: typeID, Proceeds: proceeds, Count: h.Count}
		return nil
	})
	if err != nil {
		return SaleResult{}, err
	}
	res.Balance = e.balance()
	return res, nil
}

func (e *Engine) LevelUpAsset(typeID string) (PurchaseResult, error) {
	var res PurchaseResult
	err := e.command(func(s *State, now time.Time) error {
		a, ok := s.assets[typeID]
		if !ok {
			return fmt.Errorf("%s: %w", typeID, ErrUnknownAsset)
		}
		h, owned := s.holdings[typeID]
		if !owned {
			return fmt.Errorf("%s: %w", typeID, ErrNotOwned)
		}
		cost := LevelUpCost(a.BasePrice, h.Level)
		if s.ledger.balance < cost {
			return fmt.Errorf("%s level %d costs %.0f: %w", typeID, h.Level+1, cost, ErrInsufficientFunds)
		}
		if err := s.ledger.Spend(cost); err != nil {
			return err
		}
		h.Level++
		s.holdings[typeID] = h
		res = PurchaseResult{TypeID: typeID, Price: cost, Count: h.Count, Level: h.Level}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}
	res.Balance = e.balance()
	return res, nil
}

func (e *Engine) BuyUpgrade(id string) (UpgradeResult, error) {
	var res UpgradeResult
	err := e.command(func(s *State, now time.Time) error {
		u, ok := s.upgrades[id]
		if !ok {
			return fmt.Errorf("%s: %w", id, ErrUnknownUpgrade)
		}
		if u.Purchased {
			return fmt.Errorf("%s: %w", id, ErrUpgradeOwned)
		}
		if u.Unlock != nil {
			return fmt.Errorf("%s: %w", id, ErrUpgradeLocked)
		}
		if s.ledger.balance < u.Cost {
			return fmt.Errorf("%s costs %.0f: %w", id, u.Cost, ErrInsufficientFunds)
		}
		if err := s.ledger.Spend(u.Cost); err != nil {
			return err
		}
		u.Purchased = true
		s.upgrades[id] = u
		res = UpgradeResult{UpgradeID: id, Cost: u.Cost}
		return nil
	})
	if err != nil {
		return UpgradeResult{}, err
	}
	e.mu.Lock()
	res.Balance = e.state.ledger.balance
	res.RevenuePerInterval = e.state.ledger.revenuePerInterval
	e.mu.Unlock()
	return res, nil
}

// TriggerEvent forces a market event on outside the random schedule.
func (e *Engine) TriggerEvent(id string) (MarketEvent, error) {
	var ev MarketEvent
	err := e.command(func(s *State, now time.Time) error {
		var err error
		ev, err = s.market.Activate(id, now)
		return err
	})
	if err != nil {
		return MarketEvent{}, err
	}
	e.notify.Notify(fmt.Sprintf("Market event: %s. %s", ev.Name, ev.Description), SeverityInfo)
	return ev, nil
}

func (e *Engine) balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ledger.balance
}

// view runs fn against the live state, or a freshly seeded one before the
// first Start.
func (e *Engine) view(fn func(s *State, running bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	if s == nil {
		s = newState(e.catalog, e.cfg.StartingBalance, e.marketConfig(), e.rand, e.clock.Now())
	}
	fn(s, e.running)
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

func (e *Engine) LedgerView() LedgerView {
	var v LedgerView
	e.view(func(s *State, running bool) { v = s.ledgerView(running) })
	return v
}

func (e *Engine) Assets() AssetsView {
	var v AssetsView
	e.view(func(s *State, _ bool) { v = s.assetsView() })
	return v
}

func (e *Engine) Upgrades() []Upgrade {
	var v []Upgrade
	e.view(func(s *State, _ bool) { v = s.upgradesView() })
	return v
}

func (e *Engine) Market() MarketView {
	var v MarketView
	e.view(func(s *State, _ bool) { v = s.marketView() })
	return v
}

func (e *Engine) Achievements() []Achievement {
	var v []Achievement
	e.view(func(s *State, _ bool) { v = s.achievementsView() })
	return v
}

func (e *Engine) Tiers() []TierView {
	var v []TierView
	e.view(func(s *State, _ bool) { v = s.tiersView() })
	return v
}
