package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is satisfied by any dependency that exposes a Ping method
// (database.Database, cache.RedisClient, events.EventBus, jsonfile.Dir).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Check names one dependency probed by HealthHandler.
type Check struct {
	Name    string
	Checker HealthChecker
}

// CheckResult is the outcome of one probe.
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

type healthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// HealthHandler probes every check concurrently under a 2 s deadline. Any
// failure reports "degraded" with 503. Checks with a nil Checker are skipped,
// so a deployment lists only the dependencies it actually runs.
func HealthHandler(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]CheckResult, len(checks))}
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, c := range checks {
			if c.Checker == nil {
				continue
			}
			wg.Add(1)
			go func(c Check) {
				defer wg.Done()
				res := probe(ctx, c.Checker)
				mu.Lock()
				defer mu.Unlock()
				resp.Checks[c.Name] = res
				if res.Status != "ok" {
					resp.Status = "degraded"
				}
			}(c)
		}
		wg.Wait()

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

func probe(ctx context.Context, c HealthChecker) CheckResult {
	start := time.Now()
	err := c.Ping(ctx)
	res := CheckResult{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = "unreachable"
	}
	return res
}
