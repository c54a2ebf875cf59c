package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// BackendStatus is the last known reachability of the trading bot
type BackendStatus string

const (
	StatusChecking BackendStatus = "checking"
	StatusOnline   BackendStatus = "online"
	StatusOffline  BackendStatus = "offline"
)

// HealthSnapshot is the result of one health check
type HealthSnapshot struct {
	Status    BackendStatus `json:"status"`
	Backend   any           `json:"backend,omitempty"`
	Error     string        `json:"error,omitempty"`
	CheckedAt time.Time     `json:"checkedAt"`
}

// HealthMonitor polls the backend health endpoint and keeps the latest result
type HealthMonitor struct {
	gateway  Gateway
	interval time.Duration
	current  atomic.Pointer[HealthSnapshot]
}

// NewHealthMonitor creates a monitor in the checking state
func NewHealthMonitor(gw Gateway, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	m := &HealthMonitor{gateway: gw, interval: interval}
	m.current.Store(&HealthSnapshot{Status: StatusChecking})
	return m
}

// Check probes the backend once and records the result
func (m *HealthMonitor) Check(ctx context.Context) HealthSnapshot {
	snap := HealthSnapshot{CheckedAt: time.Now().UTC()}

	backend, err := m.gateway.Health(ctx)
	if err != nil {
		snap.Status = StatusOffline
		snap.Error = err.Error()
	} else {
		snap.Status = StatusOnline
		snap.Backend = backend
	}

	prev := m.current.Swap(&snap)
	if prev == nil || prev.Status != snap.Status {
		log.Info().Str("status", string(snap.Status)).Str("error", snap.Error).Msg("trading bot status changed")
	}
	return snap
}

// Status returns the latest snapshot without contacting the backend
func (m *HealthMonitor) Status() HealthSnapshot {
	return *m.current.Load()
}

// Run checks immediately and then on every interval until ctx is done
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
