package game

import (
	"sort"
	"sync"
	"time"
)

type Handle uint64

// Scheduler runs callbacks on a fixed interval until cancelled. A single
// callback never overlaps with itself: the next firing is only taken after
// the previous call has returned.
type Scheduler interface {
	Schedule(every time.Duration, fn func()) Handle
	Cancel(h Handle)
}

type TickerScheduler struct {
	mu    sync.Mutex
	next  Handle
	stops map[Handle]chan struct{}
	wg    sync.WaitGroup
}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{stops: map[Handle]chan struct{}{}}
}

func (s *TickerScheduler) Schedule(every time.Duration, fn func()) Handle {
	if every <= 0 {
		every = time.Millisecond
	}
	s.mu.Lock()
	s.next++
	h := s.next
	stop := make(chan struct{})
	s.stops[h] = stop
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

func (s *TickerScheduler) Cancel(h Handle) {
	s.mu.Lock()
	stop, ok := s.stops[h]
	delete(s.stops, h)
	s.mu.Unlock()
	if ok {
		close(stop)
	}
}

// Wait blocks until every cancelled callback goroutine has exited.
func (s *TickerScheduler) Wait() {
	s.wg.Wait()
}

// ManualScheduler fires callbacks against a FakeClock only when Advance is
// called, which makes timer-driven code fully deterministic in tests.
type ManualScheduler struct {
	mu    sync.Mutex
	clock *FakeClock
	next  Handle
	jobs  map[Handle]*manualJob
}

type manualJob struct {
	every time.Duration
	due   time.Time
	fn    func()
}

func NewManualScheduler(clock *FakeClock) *ManualScheduler {
	return &ManualScheduler{clock: clock, jobs: map[Handle]*manualJob{}}
}

func (s *ManualScheduler) Schedule(every time.Duration, fn func()) Handle {
	if every <= 0 {
		every = time.Millisecond
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.jobs[s.next] = &manualJob{every: every, due: s.clock.Now().Add(every), fn: fn}
	return s.next
}

func (s *ManualScheduler) Cancel(h Handle) {
	s.mu.Lock()
	delete(s.jobs, h)
	s.mu.Unlock()
}

func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Advance moves the clock forward by d, firing every due callback in due
// order (ties broken by scheduling order).
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		h, job, ok := s.nextDue(target)
		if !ok {
			break
		}
		s.clock.Set(job.due)
		s.mu.Lock()
		if current, live := s.jobs[h]; live && current == job {
			job.due = job.due.Add(job.every)
		}
		s.mu.Unlock()
		job.fn()
	}
	s.clock.Set(target)
}

func (s *ManualScheduler) nextDue(target time.Time) (Handle, *manualJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handles := make([]Handle, 0, len(s.jobs))
	for h, job := range s.jobs {
		if !job.due.After(target) {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return 0, nil, false
	}
	sort.Slice(handles, func(i, j int) bool {
		a, b := s.jobs[handles[i]], s.jobs[handles[j]]
		if a.due.Equal(b.due) {
			return handles[i] < handles[j]
		}
		return a.due.Before(b.due)
	})
	return handles[0], s.jobs[handles[0]], true
}
