package store

import (
	"context"
	"strings"
	"sync"

	"rentalempire/internal/game"
)

const DefaultSlot = "default"

func slotOrDefault(slot string) string {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return DefaultSlot
	}
	return slot
}

// Memory holds the encoded snapshot in process. Nothing survives a restart.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (game.Snapshot, error) {
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()
	if data == nil {
		return game.Snapshot{}, game.ErrNoSnapshot
	}
	return game.DecodeSnapshot(data)
}

func (m *Memory) Save(ctx context.Context, snap game.Snapshot) error {
	data, err := game.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}
