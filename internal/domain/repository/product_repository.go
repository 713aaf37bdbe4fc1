package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByTenantAndSKU(ctx context.Context, tenantID, sku string) (*entity.Product, error)
	GetByTenantAndBarcode(ctx context.Context, tenantID, barcode string) (*entity.Product, error)
	// Update actualiza datos descriptivos y estado. No toca el stock.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock persiste StockQuantity (y costo) si la versión no cambió; incrementa product.Version.
	// Devuelve domain.ErrConflict si otra operación modificó el producto.
	UpdateStock(ctx context.Context, product *entity.Product) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, tenantID string) ([]*entity.Product, error)
}
