package game

import (
	"testing"
	"time"
)

func TestManualSchedulerFiresInDueOrder(t *testing.T) {
	clock := NewFakeClock(epoch)
	s := NewManualScheduler(clock)

	var fired []string
	s.Schedule(time.Second, func() { fired = append(fired, "a@"+clock.Now().Sub(epoch).String()) })
	s.Schedule(1500*time.Millisecond, func() { fired = append(fired, "b@"+clock.Now().Sub(epoch).String()) })

	s.Advance(3 * time.Second)

	want := []string{"a@1s", "b@1.5s", "a@2s", "a@3s", "b@3s"}
	if len(fired) != len(want) {
		t.Fatalf("fired=%v want=%v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired=%v want=%v", fired, want)
		}
	}
	if !clock.Now().Equal(epoch.Add(3 * time.Second)) {
		t.Fatalf("clock not at target: %v", clock.Now())
	}
}

func TestManualSchedulerCancel(t *testing.T) {
	clock := NewFakeClock(epoch)
	s := NewManualScheduler(clock)

	count := 0
	var h Handle
	h = s.Schedule(time.Second, func() {
		count++
		if count == 2 {
			s.Cancel(h)
		}
	})
	s.Advance(10 * time.Second)
	if count != 2 {
		t.Fatalf("expected callback to stop after cancel, count=%d", count)
	}
	if s.Pending() != 0 {
		t.Fatalf("pending=%d", s.Pending())
	}
}

func TestTickerSchedulerCancelStopsCallbacks(t *testing.T) {
	s := NewTickerScheduler()
	calls := make(chan struct{}, 64)
	h := s.Schedule(time.Millisecond, func() {
		select {
		case calls <- struct{}{}:
		default:
		}
	})
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker never fired")
	}
	s.Cancel(h)
	s.Wait()
	for len(calls) > 0 {
		<-calls
	}
	time.Sleep(20 * time.Millisecond)
	if len(calls) != 0 {
		t.Fatalf("callback ran after cancel")
	}
}
