package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

const SnapshotVersion = 1

// Num is a float that decodes leniently: numeric strings are parsed and
// anything else (null, garbage, NaN, Inf) becomes zero.
type Num float64

func (n *Num) UnmarshalJSON(b []byte) error {
	*n = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(s)
	}
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(b)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Num(f)
	return nil
}

func (n Num) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// Snapshot is the wholesale persisted form of a game.
type Snapshot struct {
	Version      Num                   `json:"version"`
	SavedAtMs    Num                   `json:"saved_at_ms"`
	Ledger       LedgerSnapshot        `json:"ledger"`
	Holdings     []HoldingSnapshot     `json:"holdings"`
	Upgrades     []UpgradeSnapshot     `json:"upgrades"`
	Achievements []AchievementSnapshot `json:"achievements"`
	Market       MarketSnapshot        `json:"market"`
}

type LedgerSnapshot struct {
	Balance            Num      `json:"balance"`
	LifetimeEarned     Num      `json:"lifetime_earned"`
	RevenuePerInterval Num      `json:"revenue_per_interval"`
	Tier               Num      `json:"tier"`
	NextTierThreshold  Num      `json:"next_tier_threshold"`
	UnlockedIDs        []string `json:"unlocked_ids"`
	LastSavedAtMs      Num      `json:"last_saved_at_ms"`
}

type HoldingSnapshot struct {
	TypeID string `json:"type_id"`
	Count  Num    `json:"count"`
	Level  Num    `json:"level"`
}

type UpgradeSnapshot struct {
	ID        string `json:"id"`
	Purchased bool   `json:"purchased"`
	Unlocked  bool   `json:"unlocked"`
}

type AchievementSnapshot struct {
	ID            string `json:"id"`
	Completed     bool   `json:"completed"`
	CompletedAtMs Num    `json:"completed_at_ms"`
}

type MarketSnapshot struct {
	LastEventTimeMs Num             `json:"last_event_time_ms"`
	Events          []EventSnapshot `json:"events"`
}

type EventSnapshot struct {
	ID      string `json:"id"`
	Active  bool   `json:"active"`
	StartMs Num    `json:"start_ms"`
}

func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return s, ErrNoSnapshot
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// LastSavedAt is the catch-up reference point of the snapshot.
func (s Snapshot) LastSavedAt() time.Time {
	return fromMillis(float64(s.Ledger.LastSavedAtMs))
}

func msNum(t time.Time) Num {
	return Num(millis(t))
}

func intNum(n Num) int {
	f := math.Floor(float64(n))
	if f <= 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
