package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"greeting/internal/config"
	"greeting/internal/models"
	"greeting/internal/monitoring"
	"greeting/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticLetter string

func (s staticLetter) Letter() string { return string(s) }

type greetingFixture struct {
	router   *gin.Engine
	reader   *sdkmetric.ManualReader
	recorder *tracetest.SpanRecorder
}

func newGreetingFixture(t *testing.T, letter string) *greetingFixture {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	counter, err := monitoring.NewGreetingMetrics(mp.Meter(monitoring.InstrumentationName))
	require.NoError(t, err)

	h := NewGreetingHandler(staticLetter(letter), counter, tp.Tracer(monitoring.InstrumentationName))
	router := gin.New()
	router.GET("/greeting", h.GetGreeting)

	return &greetingFixture{router: router, reader: reader, recorder: recorder}
}

func (f *greetingFixture) get(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	f.router.ServeHTTP(w, req)
	return w
}

func (f *greetingFixture) count(t *testing.T) int64 {
	return testutil.CounterValue(t, f.reader, monitoring.GreetingRequestsName)
}

func TestGetGreetingReturnsLetter(t *testing.T) {
	f := newGreetingFixture(t, "g")

	w := f.get(t)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"letter":"g"}`, w.Body.String())
}

func TestGetGreetingCountsEachCall(t *testing.T) {
	f := newGreetingFixture(t, "g")
	assert.Equal(t, int64(0), f.count(t))

	f.get(t)
	assert.Equal(t, int64(1), f.count(t))

	w := f.get(t)
	assert.Equal(t, int64(2), f.count(t))

	var body models.Greeting
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "g", body.Letter)
}

func TestGetGreetingSequentialCalls(t *testing.T) {
	f := newGreetingFixture(t, "w")
	const calls = 25

	for i := 0; i < calls; i++ {
		w := f.get(t)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"letter":"w"}`, w.Body.String())
	}

	assert.Equal(t, int64(calls), f.count(t))
}

func TestGetGreetingConcurrentCalls(t *testing.T) {
	f := newGreetingFixture(t, "x")
	const workers, perWorker = 8, 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				w := httptest.NewRecorder()
				f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/greeting", nil))
				assert.Equal(t, http.StatusOK, w.Code)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers*perWorker), f.count(t))
}

func TestGetGreetingRecordsSpan(t *testing.T) {
	f := newGreetingFixture(t, "g")

	f.get(t)
	f.get(t)

	spans := f.recorder.Ended()
	require.Len(t, spans, 2)
	for _, span := range spans {
		assert.Equal(t, SpanGreetingCall, span.Name())
		assert.False(t, span.EndTime().Before(span.StartTime()))

		var letter string
		for _, kv := range span.Attributes() {
			if kv.Key == "greeting.letter" {
				letter = kv.Value.AsString()
			}
		}
		assert.Equal(t, "g", letter)
	}
	assert.Len(t, f.recorder.Started(), 2)
}

func TestGetGreetingKeepsStartupLetter(t *testing.T) {
	provider, err := config.NewGreetingProvider(&config.Config{
		Greeting: config.GreetingConfig{Letter: "a"},
	})
	require.NoError(t, err)

	f := newGreetingFixture(t, "unused")
	h := NewGreetingHandler(provider, nopCounter{}, noop.NewTracerProvider().Tracer("test"))
	f.router.GET("/provider", h.GetGreeting)

	t.Setenv("GREETING_LETTER", "z")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/provider", nil))

	assert.JSONEq(t, `{"letter":"a"}`, w.Body.String())
}

type nopCounter struct{}

func (nopCounter) IncrementRequestCounter(context.Context) {}
