package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/music-roulette/internal/dependencies/clock"
	"github.com/mcoot/music-roulette/internal/dependencies/random"
	"github.com/mcoot/music-roulette/internal/metrics"
	"github.com/mcoot/music-roulette/internal/notify"
	redisnotify "github.com/mcoot/music-roulette/internal/notify/redis"
	"github.com/mcoot/music-roulette/internal/services/room"
	"github.com/mcoot/music-roulette/internal/storage"
	"github.com/mcoot/music-roulette/internal/storage/memory"
	redisstorage "github.com/mcoot/music-roulette/internal/storage/redis"
	"github.com/mcoot/music-roulette/internal/web/sse"
	"github.com/mcoot/music-roulette/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	RoomController *room.Controller

	// Event transports
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	SocketHub   *ws.Hub
	Publisher   *redisnotify.Publisher
	Notifier    notify.Notifier

	Metrics *metrics.Metrics
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PublishEvents mirrors room events onto Redis pub/sub (redis storage only)
	PublishEvents bool
	// EventsConfig holds pub/sub settings; zero value uses defaults
	EventsConfig redisnotify.Config
	// SocketConfig holds websocket settings; zero value uses defaults
	SocketConfig ws.Config
	// Registry receives the Prometheus collectors (optional)
	// If nil, a fresh registry is created
	Registry *prometheus.Registry
	// RuntimeMetrics adds Go and process collectors to a fresh registry
	RuntimeMetrics bool
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var publisher *redisnotify.Publisher
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		if cfg.PublishEvents {
			return nil, errors.New("PublishEvents requires StorageType redis")
		}
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		if cfg.PublishEvents {
			eventsCfg := cfg.EventsConfig
			if eventsCfg.ChannelPrefix == "" {
				eventsCfg = redisnotify.DefaultConfig()
			}
			publisher = redisnotify.New(redisStore.Client(), eventsCfg, logger)
		}
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	socketCfg := cfg.SocketConfig
	if socketCfg.MessagesPerSecond == 0 {
		defaults := ws.DefaultConfig()
		socketCfg.MessagesPerSecond = defaults.MessagesPerSecond
		socketCfg.Burst = defaults.Burst
	}

	app := newWithDependencies(store, clock.New(), random.New(), socketCfg, logger)
	if publisher != nil {
		app.Publisher = publisher
		app.Notifier = append(app.Notifier.(notify.Multi), publisher)
	}

	switch {
	case cfg.Registry != nil:
		app.Metrics = metrics.New(cfg.Registry, app.RoomController, app.subscriberCount)
	case cfg.RuntimeMetrics:
		app.Metrics = metrics.NewDefault(app.RoomController, app.subscriberCount)
	default:
		app.Metrics = metrics.New(prometheus.NewRegistry(), app.RoomController, app.subscriberCount)
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, socketCfg ws.Config, logger *slog.Logger) *App {
	roomController := room.NewController(store, clk, rnd, logger)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	socketHub := ws.NewHub(roomController, socketCfg, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		RoomController: roomController,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		SocketHub:      socketHub,
		Notifier:       notify.Multi{broadcaster, socketHub},
	}
}

// subscriberCount totals live SSE streams and sockets
func (a *App) subscriberCount() int {
	return a.HubManager.ClientCount() + a.SocketHub.ClientCount()
}

// Close releases transports and the storage connection
func (a *App) Close() error {
	a.HubManager.Close()
	a.SocketHub.CloseAll()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
