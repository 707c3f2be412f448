package game

import (
	"math"
	"testing"
	"time"
)

func TestDisplayBalance(t *testing.T) {
	tick := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		lastTick time.Time
		balance  float64
		rate     float64
		now      time.Time
		want     float64
	}{
		{name: "no elapsed", lastTick: tick, balance: 100, rate: 6, now: tick, want: 100},
		{name: "half second", lastTick: tick, balance: 100, rate: 6, now: tick.Add(500 * time.Millisecond), want: 103},
		{name: "floors fraction", lastTick: tick, balance: 10.9, rate: 0, now: tick.Add(time.Second), want: 10},
		{name: "clock behind", lastTick: tick, balance: 50, rate: 10, now: tick.Add(-time.Minute), want: 50},
		{name: "never ticked", balance: 50, rate: 10, now: tick, want: 50},
	}
	for _, tc := range tests {
		got := DisplayBalance(tc.lastTick, tc.balance, tc.rate, tc.now)
		if got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestLevelUpCost(t *testing.T) {
	tests := []struct {
		base  float64
		level int
		want  float64
	}{
		{base: 100, level: 1, want: 200},
		{base: 100, level: 3, want: 600},
		{base: 250, level: 0, want: 500},
	}
	for _, tc := range tests {
		if got := LevelUpCost(tc.base, tc.level); got != tc.want {
			t.Fatalf("base=%v level=%d got=%v want=%v", tc.base, tc.level, got, tc.want)
		}
	}
}

func TestSellValue(t *testing.T) {
	if got := SellValue(150); got != 75 {
		t.Fatalf("got %v want 75", got)
	}
	if got := SellValue(325); got != 162 {
		t.Fatalf("got %v want 162", got)
	}
}

func TestValidAmount(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		if validAmount(v) {
			t.Fatalf("expected %v to be rejected", v)
		}
	}
	for _, v := range []float64{0, 1, 1e12} {
		if !validAmount(v) {
			t.Fatalf("expected %v to be accepted", v)
		}
	}
}
