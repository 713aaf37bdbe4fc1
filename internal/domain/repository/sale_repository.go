package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia del agregado Sale (cabecera + ítems).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve la venta con sus ítems y nombres de producto resueltos; (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// Update persiste la cabecera y reemplaza todos los ítems.
	Update(ctx context.Context, sale *entity.Sale) error
	// Delete elimina la venta y sus ítems.
	Delete(ctx context.Context, id string) error
	ExistsNumber(ctx context.Context, tenantID, saleNumber string) (bool, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Sale, error)
}
