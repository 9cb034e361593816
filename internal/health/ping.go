package health

import "context"

// HealthPinger is implemented by stores that can answer a cheap liveness
// query. HealthPing returns nil when the backend is reachable.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
