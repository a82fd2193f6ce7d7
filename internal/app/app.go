package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/pvestimate/internal/controllers/restserver"
	"github.com/chrissnell/pvestimate/internal/log"
	"github.com/chrissnell/pvestimate/internal/storage/climatedb"
	"github.com/chrissnell/pvestimate/pkg/config"
	"github.com/chrissnell/pvestimate/pkg/solar"
	"go.uber.org/zap"
)

// ClimateLoader supplies measured clearness normals. The table is read once,
// after which the loader is closed.
type ClimateLoader interface {
	LoadTable(ctx context.Context) (solar.ClimateTable, error)
	Close() error
}

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger

	// openClimate connects to the climate database; replaced in tests
	openClimate func(connectionString string) (ClimateLoader, error)
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	a := &App{
		cfg:    cfg,
		logger: logger,
	}
	a.openClimate = func(conn string) (ClimateLoader, error) {
		return climatedb.Open(conn, logger)
	}
	return a
}

// BuildEstimator assembles the estimator described by the configuration,
// loading climate normals first when a climate database is configured
func (a *App) BuildEstimator(ctx context.Context) (*solar.Estimator, error) {
	coeffs := a.cfg.Engine.Coefficients()

	if a.cfg.Climate != nil {
		store, err := a.openClimate(a.cfg.Climate.ConnectionString)
		if err != nil {
			return nil, err
		}
		table, err := store.LoadTable(ctx)
		if cerr := store.Close(); cerr != nil {
			a.logger.Warnf("error closing climate database: %v", cerr)
		}
		if err != nil {
			return nil, fmt.Errorf("error loading climate normals: %w", err)
		}
		coeffs.Climate = table
	}

	if err := coeffs.Validate(); err != nil {
		return nil, err
	}

	estimator, err := solar.NewEstimator(solar.NewClearSkyModel(coeffs), solar.WithLossesPercent(a.cfg.Engine.LossesPercent))
	if err != nil {
		return nil, err
	}
	a.logger.Infow("estimator ready", "irradiance_model", estimator.ModelName(), "losses_percent", estimator.LossesPercent())
	return estimator, nil
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	estimator, err := a.BuildEstimator(ctx)
	if err != nil {
		return err
	}

	rest, err := restserver.NewController(ctx, &wg, a.cfg.Server, estimator, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
