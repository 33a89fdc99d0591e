// Package wire provides dependency injection for the focusguard application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	cliadapter "github.com/example/focusguard/internal/adapters/cli"
	"github.com/example/focusguard/internal/adapters/filesystem"
	redisadapter "github.com/example/focusguard/internal/adapters/redis"
	"github.com/example/focusguard/internal/adapters/shield"
	"github.com/example/focusguard/internal/adapters/sqlite"
	"github.com/example/focusguard/internal/app"
	"github.com/example/focusguard/internal/config"
	"github.com/example/focusguard/internal/db"
	"github.com/example/focusguard/internal/ports/primary"
	"github.com/example/focusguard/internal/ports/secondary"
	"github.com/example/focusguard/internal/telemetry"
)

var (
	configPath string

	cfg             *config.Config
	logger          *slog.Logger
	location        *time.Location
	database        *sql.DB
	wakeRepo        *sqlite.WakeTriggerRepository
	blockingService *app.Orchestrator
	taskService     primary.TaskService
	once            sync.Once
)

// SetConfigPath selects the config file. It must be called before any other
// accessor; an empty path means ~/.focusguard/config.yaml.
func SetConfigPath(path string) {
	configPath = path
}

// ConfigPath returns the config file in use.
func ConfigPath() string {
	if configPath != "" {
		return configPath
	}
	path, err := config.DefaultPath()
	if err != nil {
		log.Fatalf("failed to resolve config path: %v", err)
	}
	return path
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the application logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// Now returns the current time in the configured location.
func Now() time.Time {
	once.Do(initServices)
	return time.Now().In(location)
}

// DB returns the database connection.
func DB() *sql.DB {
	once.Do(initServices)
	return database
}

// BlockingService returns the singleton BlockingService instance.
func BlockingService() primary.BlockingService {
	once.Do(initServices)
	return blockingService
}

// TaskService returns the singleton TaskService instance.
func TaskService() primary.TaskService {
	once.Do(initServices)
	return taskService
}

// WakeInbox returns the locally stored wake triggers.
func WakeInbox() secondary.WakeInbox {
	once.Do(initServices)
	return wakeRepo
}

// Runner returns a new foreground runner reading the given clock.
// A nil clock means Now.
func Runner(now func() time.Time) *app.Runner {
	once.Do(initServices)
	if now == nil {
		now = Now
	}
	return app.NewRunner(blockingService, wakeRepo, cfg.Run.TickInterval, cfg.Run.ReconcileBurst, now, logger)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.LoadConfig(ConfigPath())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	location, err = cfg.Location()
	if err != nil {
		log.Fatalf("failed to load timezone: %v", err)
	}
	logger = NewLogger(cfg.Log, os.Stderr)

	dbPath := cfg.DBPath
	if dbPath == "" {
		if dbPath, err = db.DefaultPath(); err != nil {
			log.Fatalf("failed to resolve database path: %v", err)
		}
	}
	database, err = db.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	taskRepo := sqlite.NewTaskRepository(database)
	wakeRepo = sqlite.NewWakeTriggerRepository(database)
	eventLog := sqlite.NewBlockEventRepository(database)
	settings := settingsStore(cfg, database)

	blocklist, err := filesystem.NewBlocklistShield(cfg.Shield.TargetsFile, cfg.Shield.Targets,
		filesystem.WithHooks(cfg.Shield.OnStart, cfg.Shield.OnStop))
	if err != nil {
		log.Fatalf("failed to initialize shield: %v", err)
	}
	retrying := shield.NewRetryingShield(blocklist, shield.RetryPolicy{
		MaxAttempts:     cfg.Shield.MaxAttempts,
		InitialInterval: cfg.Shield.InitialBackoff,
		MaxInterval:     10 * cfg.Shield.InitialBackoff,
	}, logger)

	// Create services (primary ports implementation)
	blockingService = app.NewOrchestrator(app.OrchestratorDeps{
		Tasks:    taskRepo,
		Shield:   retrying,
		Wake:     wakeRepo,
		Settings: settings,
		Events:   eventLog,
		Metrics:  telemetry.Default(),
		Logger:   logger,
	})
	taskService = app.NewTaskService(taskRepo, blockingService, Now, logger)
}

func settingsStore(cfg *config.Config, database *sql.DB) secondary.SettingsStore {
	if cfg.SettingsBackend == config.BackendRedis {
		return redisadapter.NewSettingsStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
	return sqlite.NewSettingsRepository(database)
}

// NewLogger builds the slog logger described by the log config.
func NewLogger(lc config.LogConfig, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(lc.Level)}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// TaskAdapter returns a new TaskAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func TaskAdapter() *cliadapter.TaskAdapter {
	return TaskAdapterWithOutput(os.Stdout)
}

// TaskAdapterWithOutput returns a new TaskAdapter writing to the given output.
func TaskAdapterWithOutput(out io.Writer) *cliadapter.TaskAdapter {
	once.Do(initServices)
	return cliadapter.NewTaskAdapter(taskService, out)
}

// BlockingAdapter returns a new BlockingAdapter writing to stdout.
func BlockingAdapter() *cliadapter.BlockingAdapter {
	return BlockingAdapterWithOutput(os.Stdout)
}

// BlockingAdapterWithOutput returns a new BlockingAdapter writing to the given output.
func BlockingAdapterWithOutput(out io.Writer) *cliadapter.BlockingAdapter {
	return BlockingAdapterWithClock(Now, out)
}

// BlockingAdapterWithClock returns a new BlockingAdapter reading the given clock.
func BlockingAdapterWithClock(now func() time.Time, out io.Writer) *cliadapter.BlockingAdapter {
	once.Do(initServices)
	return cliadapter.NewBlockingAdapter(blockingService, now, out)
}
