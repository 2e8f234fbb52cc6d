package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/music-roulette/internal/dependencies/mocks"
	"github.com/mcoot/music-roulette/internal/metrics"
	"github.com/mcoot/music-roulette/internal/storage/memory"
	"github.com/mcoot/music-roulette/internal/web/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Registry   *prometheus.Registry
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, ws.DefaultConfig(), logger)

	reg := prometheus.NewRegistry()
	app.Metrics = metrics.New(reg, app.RoomController, app.subscriberCount)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Registry:   reg,
	}
}
