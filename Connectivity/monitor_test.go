package Connectivity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconnectDelaySchedule(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{34, 30 * time.Second},
		{64, 30 * time.Second},
		{1000, 30 * time.Second},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ReconnectDelay(c.attempt), "attempt %d", c.attempt)
	}
}

func TestReconnectDelayStaysPositiveDuringLongOutage(t *testing.T) {
	// A multi-hour outage keeps incrementing the attempt counter; the delay
	// must hold at the cap rather than wrap negative and busy-loop.
	for attempt := 1; attempt <= 100; attempt++ {
		delay := ReconnectDelay(attempt)
		assert.Positive(t, delay, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, 30*time.Second, "attempt %d", attempt)
	}
}

func TestMonitorNotifiesOnTransitions(t *testing.T) {
	failing := errors.New("connection refused")
	var probeErr error
	m := NewMonitor(func() error { return probeErr }, time.Minute)

	var events []bool
	m.Subscribe(func(online bool) { events = append(events, online) })

	// Starts online; a successful check is not a transition.
	m.check()
	assert.True(t, m.Online())
	assert.Empty(t, events)

	probeErr = failing
	m.check()
	assert.False(t, m.Online())
	assert.Equal(t, []bool{false}, events)

	// Staying offline does not re-notify.
	m.check()
	assert.Equal(t, []bool{false}, events)

	probeErr = nil
	m.check()
	assert.True(t, m.Online())
	assert.Equal(t, []bool{false, true}, events)
}

func TestMonitorBackoffResetsOnRecovery(t *testing.T) {
	failing := errors.New("connection refused")
	var probeErr error = failing
	m := NewMonitor(func() error { return probeErr }, time.Minute)

	m.check()
	m.check()
	m.check()
	m.mu.Lock()
	delay := m.nextDelayLocked()
	m.mu.Unlock()
	assert.Equal(t, 8*time.Second, delay)

	probeErr = nil
	m.check()
	m.mu.Lock()
	delay = m.nextDelayLocked()
	m.mu.Unlock()
	assert.Equal(t, time.Minute, delay)
}

func TestMonitorStopIsIdempotent(t *testing.T) {
	m := NewMonitor(func() error { return nil }, time.Minute)
	m.Start()
	m.Stop()
	m.Stop()
}
