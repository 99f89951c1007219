package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthMonitorCheck(t *testing.T) {
	ctx := context.Background()

	m := NewHealthMonitor(pingerFunc(func(context.Context) error { return nil }), nil, 0)
	status := m.Check(ctx)
	assert.True(t, status.Store)
	assert.True(t, status.Healthy())
	assert.Equal(t, status, m.Status())

	down := NewHealthMonitor(pingerFunc(func(context.Context) error { return errors.New("connection refused") }), nil, 0)
	status = down.Check(ctx)
	assert.False(t, status.Store)
	assert.False(t, status.Healthy())
	assert.False(t, down.Status().Healthy())
}

func TestHealthMonitorRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	m := NewHealthMonitor(pingerFunc(func(context.Context) error { return nil }), []*redis.Client{client}, 0)
	status := m.Check(context.Background())
	assert.True(t, status.Store)
	assert.Equal(t, []bool{false}, status.Redis)
	assert.False(t, status.Healthy())
}

func TestHealthStatusHealthy(t *testing.T) {
	assert.False(t, HealthStatus{}.Healthy())
	assert.True(t, HealthStatus{Store: true}.Healthy())
	assert.True(t, HealthStatus{Store: true, Redis: []bool{true, true}}.Healthy())
	assert.False(t, HealthStatus{Store: true, Redis: []bool{true, false}}.Healthy())
}
