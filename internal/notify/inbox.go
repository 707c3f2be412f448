package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"rentalempire/internal/game"
)

const DefaultInboxSize = 100

type Notification struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Severity  game.Severity `json:"severity"`
	CreatedAt time.Time     `json:"created_at"`
}

// Inbox keeps the most recent notifications in memory. Once full, the
// oldest entry is overwritten.
type Inbox struct {
	mu    sync.Mutex
	clock game.Clock
	buf   []Notification
	next  int
	full  bool
}

func NewInbox(size int, clock game.Clock) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	if clock == nil {
		clock = game.RealClock{}
	}
	return &Inbox{clock: clock, buf: make([]Notification, size)}
}

func (in *Inbox) Notify(message string, severity game.Severity) {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: in.clock.Now(),
	}
	in.mu.Lock()
	in.buf[in.next] = n
	in.next = (in.next + 1) % len(in.buf)
	if in.next == 0 {
		in.full = true
	}
	in.mu.Unlock()
}

// List returns up to limit notifications, newest first. limit <= 0 means all.
func (in *Inbox) List(limit int) []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	count := in.next
	if in.full {
		count = len(in.buf)
	}
	if limit <= 0 || limit > count {
		limit = count
	}
	out := make([]Notification, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (in.next - 1 - i + len(in.buf)) % len(in.buf)
		out = append(out, in.buf[idx])
	}
	return out
}
