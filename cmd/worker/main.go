package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/jobs"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// Worker asynq: libera reservas vencidas con la periodicidad de INVENTORY_SWEEP_INTERVAL.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	sweeper := inventory.NewReservationSweeper(postgres.NewReservationRepository(pool), log)
	worker, err := jobs.NewSweepWorker(cfg.Redis, cfg.Inventory, sweeper, log)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	if queued, err := jobs.EnqueueStartupSweep(ctx, cfg.Redis, cfg.Inventory); err != nil {
		log.Warn().Err(err).Msg("no se pudo encolar el barrido inicial")
	} else if queued {
		log.Info().Msg("barrido inicial encolado")
	}

	log.Info().
		Str("spec", cfg.Inventory.SweepCronSpec()).
		Str("organization_id", cfg.Inventory.SweepOrganizationID).
		Msg("iniciando worker de reservas")
	if err := worker.Run(ctx); err != nil {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
}
