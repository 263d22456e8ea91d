package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Instrument du compteur de salutations
const (
	GreetingRequestsName        = "greeting_requests"
	GreetingRequestsDescription = "Counts number of hello requests"
	GreetingRequestsUnit        = "friends"
)

// GreetingMetrics détient le compteur partagé par tous les handlers
type GreetingMetrics struct {
	requests metric.Int64Counter
}

// NewGreetingMetrics enregistre le compteur greeting_requests sur le meter fourni
func NewGreetingMetrics(meter metric.Meter) (*GreetingMetrics, error) {
	requests, err := meter.Int64Counter(
		GreetingRequestsName,
		metric.WithDescription(GreetingRequestsDescription),
		metric.WithUnit(GreetingRequestsUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register %s counter: %w", GreetingRequestsName, err)
	}

	return &GreetingMetrics{requests: requests}, nil
}

// IncrementRequestCounter incrémente le compteur de 1
func (m *GreetingMetrics) IncrementRequestCounter(ctx context.Context) {
	m.requests.Add(ctx, 1)
}
