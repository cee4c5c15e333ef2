// Package reminders schedules one-shot session reminders. Timers are
// process-local: a restart drops pending reminders. That tradeoff is
// deliberate for now; a durable job table would be the fix.
package reminders

import (
	"errors"
	"log"
	"sync"
	"time"
)

// ErrPast rejects reminders whose fire time is not strictly in the future.
var ErrPast = errors.New("reminder time is in the past")

// NotifyFunc delivers the reminder when the timer fires. Delivery failures
// are the callback's problem to log; the scheduler never retries.
type NotifyFunc func(sessionID, channelID string)

// Scheduler keeps at most one live timer per (session, channel) pair.
// Scheduling the same key again cancels and replaces the pending timer.
type Scheduler struct {
	notify NotifyFunc
	now    func() time.Time

	mu     sync.Mutex
	gen    uint64
	timers map[string]timerEntry
}

// timerEntry tags each timer with the generation that armed it. Stop on an
// already-expired timer returns false and its callback still runs, so fire
// needs the generation to tell a live timer from a superseded one.
type timerEntry struct {
	timer *time.Timer
	gen   uint64
}

func NewScheduler(notify NotifyFunc) *Scheduler {
	return &Scheduler{
		notify: notify,
		now:    time.Now,
		timers: make(map[string]timerEntry),
	}
}

func key(sessionID, channelID string) string {
	return sessionID + ":" + channelID
}

// Schedule arms a one-shot timer for the given instant. An existing timer
// for the same key is cancelled first.
func (s *Scheduler) Schedule(sessionID, channelID string, fireAt time.Time) error {
	delay := fireAt.Sub(s.now())
	if delay <= 0 {
		return ErrPast
	}

	k := key(sessionID, channelID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.timers[k]; ok {
		e.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timers[k] = timerEntry{
		timer: time.AfterFunc(delay, func() { s.fire(sessionID, channelID, gen) }),
		gen:   gen,
	}
	return nil
}

// Cancel stops any pending timer for the key. Idempotent.
func (s *Scheduler) Cancel(sessionID, channelID string) {
	k := key(sessionID, channelID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.timers[k]; ok {
		e.timer.Stop()
		delete(s.timers, k)
	}
}

// Pending reports how many timers are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) fire(sessionID, channelID string, gen uint64) {
	s.mu.Lock()
	e, ok := s.timers[key(sessionID, channelID)]
	if !ok || e.gen != gen {
		// A reschedule replaced this timer while its callback was already
		// launching. The replacement owns the key now.
		s.mu.Unlock()
		return
	}
	delete(s.timers, key(sessionID, channelID))
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error delivering reminder for session %s: %v", sessionID, r)
		}
	}()
	s.notify(sessionID, channelID)
}
