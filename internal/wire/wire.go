// Package wire assembles the orbita application from its configuration.
// Everything is built once by New and owned by the returned App; there
// are no package-level singletons.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	cliadapter "github.com/example/orbita/internal/adapters/cli"
	"github.com/example/orbita/internal/adapters/groundstation"
	"github.com/example/orbita/internal/adapters/httpapi"
	"github.com/example/orbita/internal/adapters/sqlite"
	"github.com/example/orbita/internal/app"
	"github.com/example/orbita/internal/config"
	"github.com/example/orbita/internal/db"
	"github.com/example/orbita/internal/live"
	"github.com/example/orbita/internal/logging"
	"github.com/example/orbita/internal/metrics"
	"github.com/example/orbita/internal/ports/primary"
)

// App is the assembled object graph.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	DB        *sql.DB
	Registry  *live.Registry
	Scheduler *app.Scheduler
	Missions  primary.MissionService
}

// New opens the store and builds every component. logOut receives
// structured logs.
func New(cfg *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.New()
	registry := live.NewRegistry(logger.With("component", "live"), m)

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	missionRepo := sqlite.NewMissionRepository(database)
	telemetryRepo := sqlite.NewTelemetryRepository(database)
	decisionRepo := sqlite.NewDecisionRepository(database)

	source := groundstation.NewClient(
		cfg.GroundStation.URL,
		cfg.GroundStation.APIKey,
		cfg.GroundStation.Timeout,
		logger.With("component", "groundstation"),
	)

	scheduler := app.NewScheduler(telemetryRepo, decisionRepo, registry, source, app.SchedulerConfig{
		Interval:           cfg.Autonomy.Intervals.For,
		AnomalyProbability: cfg.Autonomy.AnomalyProbability,
		UseRealSource:      cfg.Autonomy.Source == config.SourceReal,
		NewRand:            seededRand,
	}, logger.With("component", "scheduler"), m)

	missions := app.NewMissionService(missionRepo, telemetryRepo, decisionRepo, scheduler, logger.With("component", "missions"))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		DB:        database,
		Registry:  registry,
		Scheduler: scheduler,
		Missions:  missions,
	}, nil
}

// seededRand gives every loop an independent random stream.
func seededRand(missionID string) *rand.Rand {
	var h int64
	for _, c := range missionID {
		h = h*31 + int64(c)
	}
	return rand.New(rand.NewSource(time.Now().UnixNano() ^ h))
}

// MissionAdapter returns a new MissionAdapter writing to out.
// Each call creates a new adapter (adapters are stateless translators).
func (a *App) MissionAdapter(out io.Writer) *cliadapter.MissionAdapter {
	return cliadapter.NewMissionAdapter(a.Missions, out)
}

// HTTPServer returns the HTTP adapter over this App.
func (a *App) HTTPServer() *httpapi.Server {
	return httpapi.NewServer(a.Missions, a.Registry, a.Metrics, a.Logger.With("component", "http"), httpapi.Options{
		AllowedOrigins: a.Config.AllowedOrigins,
		Buffer:         a.Config.Live.Buffer,
		SendTimeout:    a.Config.Live.SendTimeout,
		Heartbeat:      a.Config.Live.Heartbeat,
	})
}

// Close stops every mission loop, then closes the store. Loops are
// reaped first so no tick writes to a closed database; if they do not
// exit before ctx ends, the store is left open and the error returned.
func (a *App) Close(ctx context.Context) error {
	if err := a.Scheduler.Shutdown(ctx); err != nil {
		a.Logger.Error("mission loops did not stop in time, leaving store open", "error", err)
		return fmt.Errorf("failed to stop mission loops: %w", err)
	}
	return a.DB.Close()
}
