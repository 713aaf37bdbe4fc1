package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta cada operación del motor en una transacción READ COMMITTED; la exclusión por
// producto la dan el ProductLocker y los SELECT ... FOR UPDATE.
type TxRunner struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// Run hace Commit solo si fn termina sin error. Deadlocks y fallas de serialización se reportan
// como domain.ErrConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, r.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	repos := inventory.Repos{
		Products:  NewProductRepository(tx),
		Movements: NewStockMovementRepository(tx),
		Sales:     NewSaleRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return asConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return asConflict(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
