package game

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestLedgerTransactions(t *testing.T) {
	l := NewLedger(100, time.Unix(0, 0))
	if err := l.Earn(50); err != nil {
		t.Fatalf("earn: %v", err)
	}
	if err := l.Spend(30); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if err := l.SellProceeds(40); err != nil {
		t.Fatalf("sell proceeds: %v", err)
	}
	if l.Balance() != 160 {
		t.Fatalf("balance got=%v want=160", l.Balance())
	}
	if l.LifetimeEarned() != 50 {
		t.Fatalf("sell proceeds must not count as earnings, lifetime=%v", l.LifetimeEarned())
	}
}

func TestLedgerRejectsInvalidAmounts(t *testing.T) {
	l := NewLedger(100, time.Unix(0, 0))
	for _, v := range []float64{math.NaN(), math.Inf(1), -5} {
		if err := l.Earn(v); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("earn %v: expected ErrInvalidAmount, got %v", v, err)
		}
		if err := l.Spend(v); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("spend %v: expected ErrInvalidAmount, got %v", v, err)
		}
		if err := l.SellProceeds(v); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("sell %v: expected ErrInvalidAmount, got %v", v, err)
		}
	}
	if l.Balance() != 100 || l.LifetimeEarned() != 0 {
		t.Fatalf("rejected transactions changed the ledger: balance=%v lifetime=%v", l.Balance(), l.LifetimeEarned())
	}
}

func TestLedgerSpendDoesNotClamp(t *testing.T) {
	l := NewLedger(10, time.Unix(0, 0))
	if err := l.Spend(25); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if l.Balance() != -15 {
		t.Fatalf("got %v want -15", l.Balance())
	}
}

func TestLedgerAdvanceTierOnlyIncreases(t *testing.T) {
	l := NewLedger(0, time.Unix(0, 0))
	if l.Tier() != StartingTier || l.NextTierThreshold() != StartingThreshold {
		t.Fatalf("unexpected starting tier=%d threshold=%v", l.Tier(), l.NextTierThreshold())
	}
	if err := l.AdvanceTier(2, 200); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := l.AdvanceTier(2, 500); !errors.Is(err, ErrTierRegression) {
		t.Fatalf("expected ErrTierRegression, got %v", err)
	}
	if err := l.AdvanceTier(1, 50); !errors.Is(err, ErrTierRegression) {
		t.Fatalf("expected ErrTierRegression, got %v", err)
	}
	if l.Tier() != 2 || l.NextTierThreshold() != 200 {
		t.Fatalf("tier=%d threshold=%v", l.Tier(), l.NextTierThreshold())
	}
}

func TestLedgerUnlock(t *testing.T) {
	l := NewLedger(0, time.Unix(0, 0))
	if !l.Unlock("crane") {
		t.Fatalf("first unlock should report new")
	}
	if l.Unlock("crane") {
		t.Fatalf("second unlock should be a no-op")
	}
	l.Unlock("bulldozer")
	ids := l.UnlockedIDs()
	if len(ids) != 2 || ids[0] != "bulldozer" || ids[1] != "crane" {
		t.Fatalf("unexpected ids %v", ids)
	}
}
