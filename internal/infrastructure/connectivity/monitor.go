// Package connectivity tracks whether the device can reach the progress
// service with valid credentials, and edge-triggers synchronization when
// both become true.
package connectivity

import (
	"log/slog"
	"sync"
)

// Monitor combines the reachability signal from the platform with the
// authentication signal from the token manager. The OnOnline callback fires
// exactly once per transition into the online-and-authenticated state, never
// repeatedly while the state holds.
type Monitor struct {
	mu            sync.Mutex
	reachable     bool
	authenticated bool
	online        bool

	onOnline func()
	onLost   func()
	logger   *slog.Logger
}

// NewMonitor creates a monitor that starts offline and unauthenticated.
func NewMonitor(onOnline, onLost func(), logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{onOnline: onOnline, onLost: onLost, logger: logger}
}

// SetReachable records a change in network reachability.
func (m *Monitor) SetReachable(reachable bool) {
	m.update(func() { m.reachable = reachable })
}

// SetAuthenticated records a change in credential validity.
func (m *Monitor) SetAuthenticated(authenticated bool) {
	m.update(func() { m.authenticated = authenticated })
}

// Online reports the combined state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *Monitor) update(apply func()) {
	m.mu.Lock()
	apply()
	nowOnline := m.reachable && m.authenticated
	changed := nowOnline != m.online
	m.online = nowOnline
	m.mu.Unlock()

	if !changed {
		return
	}
	if nowOnline {
		m.logger.Info("connectivity restored")
		if m.onOnline != nil {
			m.onOnline()
		}
		return
	}
	m.logger.Info("connectivity lost")
	if m.onLost != nil {
		m.onLost()
	}
}
