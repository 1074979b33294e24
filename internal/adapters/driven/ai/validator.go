package ai

import (
	"context"
	"slices"
	"time"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Pinger is any service with a lightweight reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
	ModelName() string
}

// Check is the outcome of pinging one service.
type Check struct {
	Name  string
	Model string
	Err   error
}

// OK reports whether the service answered.
func (c Check) OK() bool {
	return c.Err == nil
}

// CheckServices pings each named service with a bounded timeout.
// Nil services are skipped.
func CheckServices(ctx context.Context, services map[string]Pinger) []Check {
	names := sortedKeys(services)
	checks := make([]Check, 0, len(names))
	for _, name := range names {
		svc := services[name]
		if svc == nil {
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := svc.Ping(pingCtx)
		cancel()
		checks = append(checks, Check{Name: name, Model: svc.ModelName(), Err: err})
	}
	return checks
}

func sortedKeys(m map[string]Pinger) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
