package component

import "context"

// HealthStatus is the coarse state reported by Health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in a registry health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// OK reports whether the component can serve requests, possibly degraded.
func (h Health) OK() bool { return h.Status != StatusUnhealthy }

// Component is something with a start/stop lifecycle: the REST client, the
// mock API server.
type Component interface {
	// Name must be unique within a Registry.
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. The registry passes a ctx with a deadline.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is what the registry logs when a component starts.
type Description struct {
	Name    string // falls back to Component.Name
	Type    string // "client", "server"
	Details string // e.g. "http://localhost:5980 timeout=30s"
}

// Describable components contribute a Description to startup logs.
type Describable interface {
	Describe() Description
}
