package game

import (
	"context"
	"sync"
	"time"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// scriptedRand replays values in order, then keeps returning the fallback.
type scriptedRand struct {
	mu       sync.Mutex
	values   []float64
	fallback float64
	calls    int
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.values) == 0 {
		return r.fallback
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v
}

func (r *scriptedRand) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type memStore struct {
	mu      sync.Mutex
	snap    *Snapshot
	saves   int
	saveErr error
}

func (m *memStore) Load(context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return *m.snap, nil
}

func (m *memStore) Save(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = &s
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

func (m *memStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// gatedStore parks the next Save after arm until release is closed.
type gatedStore struct {
	memStore
	gateMu  sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) arm() {
	g.gateMu.Lock()
	g.armed = true
	g.gateMu.Unlock()
}

func (g *gatedStore) Save(ctx context.Context, s Snapshot) error {
	g.gateMu.Lock()
	wait := g.armed
	g.armed = false
	g.gateMu.Unlock()
	if wait {
		close(g.entered)
		<-g.release
	}
	return g.memStore.Save(ctx, s)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string, _ Severity) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func testEvents() []MarketEvent {
	return []MarketEvent{
		{ID: "boom", Name: "Boom", DurationSeconds: 120, Effects: MarketEffects{GlobalRevenueBonus: 0.25}},
		{ID: "slump", Name: "Slump", DurationSeconds: 90, Effects: MarketEffects{GlobalRevenueBonus: -0.15, GlobalPriceMultiplier: 0.8}},
	}
}
