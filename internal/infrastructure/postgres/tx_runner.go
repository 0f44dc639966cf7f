package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos por transacción ante 40001/40P01.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// Los casos de uso bloquean la fila del producto con SELECT FOR UPDATE; cada sentencia posterior
// ve lo confirmado por el titular anterior del bloqueo.
type TxRunner struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, log *logger.Logger) *TxRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, log: log.Component("tx_runner")}
}

// NewRepos arma los repositorios sobre un Querier (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Products:      NewProductRepository(q),
		Warehouses:    NewWarehouseRepository(q),
		Units:         NewUnitRepository(q),
		Ledger:        NewLedgerRepository(q),
		HandlingUnits: NewHandlingUnitRepository(q),
		Reservations:  NewReservationRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Reintenta la transacción completa ante fallos de serialización o deadlocks.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		r.log.Warn().Err(err).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando transacción")
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
