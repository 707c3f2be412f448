package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rentalempire/internal/game"
	"rentalempire/internal/notify"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSource struct {
	ledger  game.LedgerView
	notes   []notify.Notification
	saveErr error
	saves   int
}

func (f *fakeSource) Ledger(context.Context) (game.LedgerView, error) {
	return f.ledger, nil
}

func (f *fakeSource) Notifications(context.Context, int) ([]notify.Notification, error) {
	return f.notes, nil
}

func (f *fakeSource) Save(context.Context) error {
	f.saves++
	return f.saveErr
}

func step(t *testing.T, m watchModel, msg tea.Msg) (watchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(watchModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return wm, cmd
}

func TestWatchModelInterpolatesWhileRunning(t *testing.T) {
	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{ledger: game.LedgerView{Balance: 1000, RevenuePerInterval: 10, LastTickAt: tick, Running: true}}
	m := newWatchModel(src, tick)

	m, _ = step(t, m, fetchCmd(src)())
	if !m.loaded {
		t.Fatalf("expected model to be loaded")
	}
	m, _ = step(t, m, frameMsg(tick.Add(2500*time.Millisecond)))
	if got := m.displayBalance(); got != 1025 {
		t.Fatalf("expected interpolated balance 1025, got %v", got)
	}
	if !strings.Contains(m.View(), "$1,025") {
		t.Fatalf("view missing interpolated balance:\n%s", m.View())
	}

	src.ledger.Running = false
	m, _ = step(t, m, fetchCmd(src)())
	if got := m.displayBalance(); got != 1000 {
		t.Fatalf("paused game should not interpolate, got %v", got)
	}
	if !strings.Contains(m.View(), "game paused") {
		t.Fatalf("view should show paused state")
	}
}

func TestWatchModelSaveAndQuit(t *testing.T) {
	src := &fakeSource{saveErr: errors.New("disk full")}
	m := newWatchModel(src, time.Now())

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatalf("expected save command")
	}
	m, _ = step(t, m, cmd())
	if src.saves != 1 || !strings.HasPrefix(m.status, "save failed") {
		t.Fatalf("unexpected save state: saves=%d status=%q", src.saves, m.status)
	}

	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}
