// Package testutil contient des aides partagées par les tests du service.
package testutil

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// NewLogger retourne un logger silencieux pour les tests
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// FindMetric collecte le reader et retourne la métrique portant ce nom
func FindMetric(t *testing.T, reader sdkmetric.Reader, name string) (metricdata.Metrics, bool) {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// CounterValue retourne la somme des points d'un compteur int64, 0 s'il n'a jamais été incrémenté
func CounterValue(t *testing.T, reader sdkmetric.Reader, name string) int64 {
	t.Helper()

	m, ok := FindMetric(t, reader, name)
	if !ok {
		return 0
	}

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}
