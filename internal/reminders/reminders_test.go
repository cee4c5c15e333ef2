package reminders

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	fired []string
	done  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) notify(sessionID, channelID string) {
	r.mu.Lock()
	r.fired = append(r.fired, sessionID+":"+channelID)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reminder never fired")
	}
}

func TestScheduleRejectsPastTime(t *testing.T) {
	s := NewScheduler(func(string, string) {})

	err := s.Schedule("sess", "chan", time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, ErrPast)
	assert.Equal(t, 0, s.Pending(), "no timer may be created for a rejected reminder")

	err = s.Schedule("sess", "chan", time.Now())
	assert.ErrorIs(t, err, ErrPast, "fireAt == now is not strictly in the future")
}

func TestScheduleFiresOnceAndCleansUp(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.notify)

	require.NoError(t, s.Schedule("s1", "c1", time.Now().Add(10*time.Millisecond)))
	rec.wait(t)

	assert.Equal(t, []string{"s1:c1"}, rec.fired)
	assert.Equal(t, 0, s.Pending())
}

func TestRescheduleSupersedesPriorTimer(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.notify)

	require.NoError(t, s.Schedule("s1", "c1", time.Now().Add(time.Hour)))
	require.NoError(t, s.Schedule("s1", "c1", time.Now().Add(20*time.Millisecond)))
	assert.Equal(t, 1, s.Pending(), "same key must hold a single pending timer")

	rec.wait(t)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"s1:c1"}, rec.fired, "superseded timer must not fire")
}

func TestExpiredCallbackOfSupersededTimerIsANoOp(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.notify)

	require.NoError(t, s.Schedule("s1", "c1", time.Now().Add(time.Hour)))
	staleGen := s.timers[key("s1", "c1")].gen
	require.NoError(t, s.Schedule("s1", "c1", time.Now().Add(time.Hour)))

	// This is what the first timer runs if it expires in the exact moment the
	// reschedule stops it: Stop returned false and the callback is in flight.
	s.fire("s1", "c1", staleGen)

	assert.Empty(t, rec.fired, "a superseded timer must not deliver")
	assert.Equal(t, 1, s.Pending(), "the replacement must stay tracked and cancellable")
}

func TestDistinctKeysDoNotContend(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec.notify)

	require.NoError(t, s.Schedule("s1", "c1", time.Now().Add(time.Hour)))
	require.NoError(t, s.Schedule("s1", "c2", time.Now().Add(time.Hour)))
	require.NoError(t, s.Schedule("s2", "c1", time.Now().Add(time.Hour)))
	assert.Equal(t, 3, s.Pending())
}

func TestCancelIsIdempotent(t *testing.T) {
	s := NewScheduler(func(string, string) {})

	require.NoError(t, s.Schedule("s1", "c1", time.Now().Add(time.Hour)))
	s.Cancel("s1", "c1")
	s.Cancel("s1", "c1")
	assert.Equal(t, 0, s.Pending())
}

func TestPanickingNotifyIsSwallowed(t *testing.T) {
	fired := make(chan struct{})
	s := NewScheduler(func(string, string) {
		close(fired)
		panic("channel deleted")
	})

	require.NoError(t, s.Schedule("s1", "c1", time.Now().Add(10*time.Millisecond)))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("reminder never fired")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, s.Pending(), "timer entry must be cleaned up even when delivery fails")
}
