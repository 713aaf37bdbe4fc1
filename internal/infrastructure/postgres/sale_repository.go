package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, tenant_id, sale_number, total_amount, discount_amount, final_amount,
	payment_method, cashier_id, created_at, updated_at`

// SaleRepo persiste el agregado Sale (cabecera + sale_items).
// Create y Update escriben varias tablas: usarlo con la tx del TxRunner.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera e ítems.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.TenantID, s.SaleNumber, s.TotalAmount, s.DiscountAmount, s.FinalAmount,
		string(s.PaymentMethod), s.CashierID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return r.insertItems(ctx, s)
}

// GetByID obtiene la venta con sus ítems y nombres de producto.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadItems(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Update actualiza la cabecera y reemplaza todos los ítems.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales
		SET total_amount = $2, discount_amount = $3, final_amount = $4, payment_method = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, s.ID, s.TotalAmount, s.DiscountAmount, s.FinalAmount, string(s.PaymentMethod), s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	return r.insertItems(ctx, s)
}

// Delete elimina la venta; los ítems caen por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExistsNumber indica si el número ya está usado en el tenant.
func (r *SaleRepo) ExistsNumber(ctx context.Context, tenantID, saleNumber string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sales WHERE tenant_id = $1 AND sale_number = $2)`,
		tenantID, saleNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists sale number: %w", err)
	}
	return exists, nil
}

// ListByTenant lista ventas del tenant (más recientes primero) con sus ítems.
func (r *SaleRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE tenant_id = $1 ORDER BY created_at DESC, sale_number DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Los ítems se cargan después de cerrar rows: una tx no admite dos consultas abiertas.
	for _, s := range list {
		if err := r.loadItems(ctx, s); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *SaleRepo) insertItems(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, line_no, quantity, unit_price, discount_amount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, it := range s.Items {
		if _, err := r.q.Exec(ctx, query,
			it.ID, s.ID, it.ProductID, i+1, it.Quantity, it.UnitPrice, it.DiscountAmount, it.LineTotal,
		); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

func (r *SaleRepo) loadItems(ctx context.Context, s *entity.Sale) error {
	query := `
		SELECT si.id, si.sale_id, si.product_id, p.name, si.quantity, si.unit_price, si.discount_amount, si.line_total
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1
		ORDER BY si.line_no`
	rows, err := r.q.Query(ctx, query, s.ID)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	s.Items = s.Items[:0]
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.DiscountAmount, &it.LineTotal); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, &it)
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var method string
	if err := row.Scan(
		&s.ID, &s.TenantID, &s.SaleNumber, &s.TotalAmount, &s.DiscountAmount, &s.FinalAmount,
		&method, &s.CashierID, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.PaymentMethod = entity.PaymentMethod(method)
	return &s, nil
}
