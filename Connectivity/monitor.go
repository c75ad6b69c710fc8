package Connectivity

import (
	"log"
	"sync"
	"time"
)

// Default is the monitor the rest of the app consults. Set in main.
var Default *Monitor

const maxReconnectDelay = 30 * time.Second

// Monitor tracks backend reachability as explicit state with subscriber
// callbacks instead of an ambient global flag. While online it probes on a
// fixed interval; after a failed probe it switches to exponential backoff
// capped at maxReconnectDelay until the probe succeeds again. Pending
// reconnect timers are cancelled on Stop and on repeated state toggles.
type Monitor struct {
	probe    func() error
	interval time.Duration

	mu      sync.Mutex
	online  bool
	started bool
	subs    []func(online bool)
	timer   *time.Timer
	attempt int
	done    chan struct{}
}

// NewMonitor creates a monitor around probe. The probe should be a cheap
// round-trip to the backend, such as a database ping.
func NewMonitor(probe func() error, interval time.Duration) *Monitor {
	return &Monitor{
		probe:    probe,
		interval: interval,
		online:   true,
		done:     make(chan struct{}),
	}
}

// Subscribe registers a callback invoked on every online/offline transition.
// Callbacks run on the monitor goroutine and must not block.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Start begins probing. The first probe runs immediately.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.run()
}

// Stop cancels any pending probe timer and halts the monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}
	m.started = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	close(m.done)
}

func (m *Monitor) run() {
	m.check()
	for {
		m.mu.Lock()
		delay := m.nextDelayLocked()
		timer := time.NewTimer(delay)
		m.timer = timer
		m.mu.Unlock()

		select {
		case <-m.done:
			timer.Stop()
			return
		case <-timer.C:
			m.check()
		}
	}
}

// nextDelayLocked returns the regular interval while online, or the capped
// backoff delay while reconnecting.
func (m *Monitor) nextDelayLocked() time.Duration {
	if m.online {
		return m.interval
	}
	return ReconnectDelay(m.attempt)
}

func (m *Monitor) check() {
	err := m.probe()

	m.mu.Lock()
	was := m.online
	now := err == nil
	m.online = now
	if now {
		m.attempt = 0
	} else {
		m.attempt++
	}
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if was != now {
		if now {
			log.Println("Backend connection restored")
		} else {
			log.Printf("Backend unreachable, retrying with backoff: %v", err)
		}
		for _, fn := range subs {
			fn(now)
		}
	}
}

// ReconnectDelay exposes the backoff schedule: attempt n (1-based) waits
// 2^n seconds capped at 30s. The shift itself is clamped; the attempt
// counter keeps growing during a long outage and an unchecked shift would
// overflow into a negative delay.
func ReconnectDelay(attempt int) time.Duration {
	if attempt >= 5 {
		return maxReconnectDelay
	}
	return time.Duration(1<<uint(attempt)) * time.Second
}
