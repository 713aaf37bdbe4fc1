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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, tenant_id, category_id, sku, barcode, name, price, cost_price,
	stock_quantity, min_stock_level, status, version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TenantID, nullable(p.CategoryID), p.SKU, nullable(p.Barcode), p.Name, p.Price, p.CostPrice,
		p.StockQuantity, p.MinStockLevel, string(p.Status), p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetByTenantAndSKU obtiene un producto por tenant y SKU.
func (r *ProductRepo) GetByTenantAndSKU(ctx context.Context, tenantID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND sku = $2`, tenantID, sku)
}

// GetByTenantAndBarcode obtiene un producto por tenant y código de barras.
func (r *ProductRepo) GetByTenantAndBarcode(ctx context.Context, tenantID, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND barcode = $2`, tenantID, barcode)
}

// Update actualiza datos descriptivos y estado. No toca stock ni versión; cost_price nil conserva el costo guardado.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, barcode = $3, category_id = $4, price = $5, cost_price = COALESCE($6, cost_price),
		    min_stock_level = $7, status = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, nullable(p.Barcode), nullable(p.CategoryID), p.Price, p.CostPrice,
		p.MinStockLevel, string(p.Status), p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock persiste stock y costo solo si la versión no cambió desde la lectura.
func (r *ProductRepo) UpdateStock(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET stock_quantity = $2, cost_price = COALESCE($3, cost_price), updated_at = $4, version = version + 1
		WHERE id = $1 AND version = $5
		RETURNING version`
	var version int64
	err := r.q.QueryRow(ctx, query, p.ID, p.StockQuantity, p.CostPrice, p.UpdatedAt, p.Version).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update product stock: %w", err)
	}
	p.Version = version
	return nil
}

// ListByTenant lista productos de un tenant con paginación.
func (r *ProductRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`
	return r.list(ctx, query, tenantID, limit, offset)
}

// ListLowStock lista productos activos del tenant con stock en o bajo el mínimo.
func (r *ProductRepo) ListLowStock(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE tenant_id = $1 AND status = 'ACTIVE' AND stock_quantity <= min_stock_level
		ORDER BY name, id`
	return r.list(ctx, query, tenantID)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var categoryID, barcode *string
	var status string
	err := row.Scan(
		&p.ID, &p.TenantID, &categoryID, &p.SKU, &barcode, &p.Name, &p.Price, &p.CostPrice,
		&p.StockQuantity, &p.MinStockLevel, &status, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CategoryID = deref(categoryID)
	p.Barcode = deref(barcode)
	p.Status = entity.ProductStatus(status)
	return &p, nil
}
