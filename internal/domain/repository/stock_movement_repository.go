package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve movimientos del producto del más reciente al más antiguo. limit <= 0 = todos.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error)
	// DeleteByReference elimina los movimientos generados por una venta. Devuelve cuántos borró.
	DeleteByReference(ctx context.Context, referenceID string) (int64, error)
}
