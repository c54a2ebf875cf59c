package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthMonitor_Check(t *testing.T) {
	gw := new(MockGateway)
	m := NewHealthMonitor(gw, time.Minute)
	ctx := context.Background()

	assert.Equal(t, StatusChecking, m.Status().Status)

	gw.On("Health", ctx).Return(map[string]any{"status": "ok"}, nil).Once()
	snap := m.Check(ctx)
	assert.Equal(t, StatusOnline, snap.Status)
	assert.Equal(t, map[string]any{"status": "ok"}, snap.Backend)
	assert.Equal(t, StatusOnline, m.Status().Status)

	gw.On("Health", ctx).Return(nil, errors.New("connection refused")).Once()
	snap = m.Check(ctx)
	assert.Equal(t, StatusOffline, snap.Status)
	assert.Equal(t, "connection refused", snap.Error)
	assert.Equal(t, StatusOffline, m.Status().Status)
}

func TestHealthMonitor_Run(t *testing.T) {
	var calls atomic.Int32
	gw := new(MockGateway)
	gw.On("Health", mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).
		Return(map[string]any{}, nil)

	m := NewHealthMonitor(gw, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusOnline, m.Status().Status)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
