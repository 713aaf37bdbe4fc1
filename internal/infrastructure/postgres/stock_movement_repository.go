package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, tenant_id, product_id, type, quantity, effective_quantity, unit_price,
	reference_id, notes, created_by, created_at`

// StockMovementRepo implementación del libro de stock sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.ProductID, string(m.Type), m.Quantity, m.EffectiveQuantity, m.UnitPrice,
		nullable(m.ReferenceID), nullable(m.Notes), nullable(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos del producto del más reciente al más antiguo. limit <= 0 = todos.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{productID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	return r.list(ctx, query, args...)
}

// ListByReference lista los movimientos generados por una venta.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE reference_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, referenceID)
}

// DeleteByReference elimina los movimientos SALE de una venta y devuelve cuántos borró.
func (r *StockMovementRepo) DeleteByReference(ctx context.Context, referenceID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE reference_id = $1 AND type = 'SALE'`, referenceID)
	if err != nil {
		return 0, fmt.Errorf("delete stock movements: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var movType string
	var referenceID, notes, createdBy *string
	if err := row.Scan(
		&m.ID, &m.TenantID, &m.ProductID, &movType, &m.Quantity, &m.EffectiveQuantity, &m.UnitPrice,
		&referenceID, &notes, &createdBy, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(movType)
	m.ReferenceID = deref(referenceID)
	m.Notes = deref(notes)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}
