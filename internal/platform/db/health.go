package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthStatus reports the outcome of a database health probe.
type HealthStatus struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency_ns"`
	Error   string        `json:"error,omitempty"`
}

// CheckHealth pings the pool with a short deadline. A nil pool (in-memory
// deployments) is reported healthy: there is nothing to probe.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) HealthStatus {
	if pool == nil {
		return HealthStatus{Healthy: true}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := pool.Ping(ctx)
	status := HealthStatus{
		Healthy: err == nil,
		Latency: time.Since(start),
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}
