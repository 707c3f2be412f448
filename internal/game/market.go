package game

import (
	"fmt"
	"time"
)

type MarketConfig struct {
	Cooldown    time.Duration
	Probability float64
}

// Market toggles timed events between inactive and active. At most one
// instance of an event id is ever active; distinct ids may overlap.
type Market struct {
	events        map[string]*MarketEvent
	order         []string
	lastEventTime time.Time
	cooldown      time.Duration
	probability   float64
	eligible      bool
	rand          Rand
}

func NewMarket(events []MarketEvent, cfg MarketConfig, rnd Rand, now time.Time) *Market {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultEventCooldown
	}
	if cfg.Probability <= 0 || cfg.Probability > 1 {
		cfg.Probability = EventTriggerProbability
	}
	m := &Market{
		events:        make(map[string]*MarketEvent, len(events)),
		lastEventTime: now,
		cooldown:      cfg.Cooldown,
		probability:   cfg.Probability,
		rand:          rnd,
	}
	for _, ev := range events {
		ev := ev
		ev.Active = false
		ev.StartTime = nil
		ev.EndTime = nil
		if _, dup := m.events[ev.ID]; dup {
			continue
		}
		m.events[ev.ID] = &ev
		m.order = append(m.order, ev.ID)
	}
	return m
}

// Expire deactivates every active event whose end time has been reached.
func (m *Market) Expire(now time.Time) []MarketEvent {
	var ended []MarketEvent
	for _, id := range m.order {
		ev := m.events[id]
		if !ev.Active || ev.EndTime == nil {
			continue
		}
		if !now.Before(*ev.EndTime) {
			ended = append(ended, *ev)
			m.deactivate(ev)
		}
	}
	return ended
}

// TryTrigger runs one trigger attempt: once the cooldown has elapsed the
// market stays eligible until a Bernoulli draw succeeds.
func (m *Market) TryTrigger(now time.Time) (MarketEvent, bool) {
	if !m.eligible && now.Sub(m.lastEventTime) >= m.cooldown {
		m.eligible = true
	}
	if !m.eligible {
		return MarketEvent{}, false
	}
	pool := m.inactiveIDs()
	if len(pool) == 0 {
		return MarketEvent{}, false
	}
	if m.rand.Float64() >= m.probability {
		return MarketEvent{}, false
	}
	idx := int(m.rand.Float64() * float64(len(pool)))
	if idx >= len(pool) {
		idx = len(pool) - 1
	}
	ev := m.events[pool[idx]]
	m.activate(ev, now)
	return *ev, true
}

// Activate forces an inactive event on, bypassing cooldown and the draw.
func (m *Market) Activate(id string, now time.Time) (MarketEvent, error) {
	ev, ok := m.events[id]
	if !ok {
		return MarketEvent{}, fmt.Errorf("%s: %w", id, ErrUnknownEvent)
	}
	if ev.Active {
		return MarketEvent{}, fmt.Errorf("%s: %w", id, ErrEventActive)
	}
	m.activate(ev, now)
	return *ev, nil
}

func (m *Market) activate(ev *MarketEvent, now time.Time) {
	start := now
	end := now.Add(ev.Duration())
	ev.Active = true
	ev.StartTime = &start
	ev.EndTime = &end
	m.lastEventTime = now
	m.eligible = false
}

func (m *Market) deactivate(ev *MarketEvent) {
	ev.Active = false
	ev.StartTime = nil
	ev.EndTime = nil
}

func (m *Market) inactiveIDs() []string {
	out := make([]string, 0, len(m.order))
	for _, id := range m.order {
		if !m.events[id].Active {
			out = append(out, id)
		}
	}
	return out
}

func (m *Market) ActiveIDs() []string {
	var out []string
	for _, id := range m.order {
		if m.events[id].Active {
			out = append(out, id)
		}
	}
	return out
}

func (m *Market) Eligible() bool { return m.eligible }
func (m *Market) LastEventTime() time.Time { return m.lastEventTime }
func (m *Market) Cooldown() time.Duration { return m.cooldown }

// RevenueBonus is the sum of the global revenue bonus of every active event.
func (m *Market) RevenueBonus() float64 {
	bonus := 0.0
	for _, id := range m.order {
		ev := m.events[id]
		if ev.Active {
			bonus += ev.Effects.GlobalRevenueBonus
		}
	}
	return bonus
}

// PriceMultiplier combines per-type and global price multipliers of every
// active event for one asset type.
func (m *Market) PriceMultiplier(typeID string) float64 {
	mult := 1.0
	for _, id := range m.order {
		ev := m.events[id]
		if !ev.Active {
			continue
		}
		if v, ok := ev.Effects.PriceMultiplier[typeID]; ok && v > 0 {
			mult *= v
		}
		if ev.Effects.GlobalPriceMultiplier > 0 {
			mult *= ev.Effects.GlobalPriceMultiplier
		}
	}
	return mult
}

func (m *Market) Modifiers() Modifiers {
	mods := Modifiers{RevenueBonus: m.RevenueBonus(), PriceMultiplier: 1}
	for _, id := range m.order {
		ev := m.events[id]
		if !ev.Active {
			continue
		}
		if ev.Effects.GlobalPriceMultiplier > 0 {
			mods.PriceMultiplier *= ev.Effects.GlobalPriceMultiplier
		}
		for typeID, v := range ev.Effects.PriceMultiplier {
			if mods.AssetPrice == nil {
				mods.AssetPrice = map[string]float64{}
			}
			if _, ok := mods.AssetPrice[typeID]; !ok {
				mods.AssetPrice[typeID] = 1
			}
			mods.AssetPrice[typeID] *= v
		}
		for typeID, v := range ev.Effects.RevenueBonus {
			if mods.AssetRevenueBonus == nil {
				mods.AssetRevenueBonus = map[string]float64{}
			}
			mods.AssetRevenueBonus[typeID] += v
		}
	}
	return mods
}

func (m *Market) Events() []MarketEvent {
	out := make([]MarketEvent, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneEvent(*m.events[id]))
	}
	return out
}

func cloneEvent(ev MarketEvent) MarketEvent {
	if ev.StartTime != nil {
		t := *ev.StartTime
		ev.StartTime = &t
	}
	if ev.EndTime != nil {
		t := *ev.EndTime
		ev.EndTime = &t
	}
	return ev
}

// restore applies persisted activity. Events whose stored window is
// inconsistent are left inactive.
func (m *Market) restore(states []EventSnapshot, lastEventTime time.Time) {
	if !lastEventTime.IsZero() {
		m.lastEventTime = lastEventTime
	}
	for _, st := range states {
		ev, ok := m.events[st.ID]
		if !ok || !st.Active {
			continue
		}
		start := fromMillis(float64(st.StartMs))
		if start.IsZero() {
			continue
		}
		end := start.Add(ev.Duration())
		ev.Active = true
		ev.StartTime = &start
		ev.EndTime = &end
	}
}
