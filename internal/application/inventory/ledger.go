package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// LoadProductForUpdate bloquea la fila del producto y verifica que sea del tenant.
func LoadProductForUpdate(ctx context.Context, products repository.ProductRepository, tenantID, productID string) (*entity.Product, error) {
	product, err := products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if !product.BelongsTo(tenantID) {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

// ApplyMovementInTx aplica la cantidad efectiva del movimiento al producto y persiste ambos
// con los repositorios del caller (misma transacción). El movimiento solo se guarda si el
// cambio de stock se aplicó.
func ApplyMovementInTx(ctx context.Context, repos Repos, product *entity.Product, mov *entity.StockMovement) error {
	switch {
	case mov.EffectiveQuantity > 0:
		if err := product.IncreaseStock(mov.EffectiveQuantity); err != nil {
			return err
		}
	case mov.EffectiveQuantity < 0:
		if err := product.DecreaseStock(-mov.EffectiveQuantity); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: movimiento sin cantidad", domain.ErrInvalidInput)
	}
	product.UpdatedAt = mov.CreatedAt
	if err := repos.Products.UpdateStock(ctx, product); err != nil {
		return err
	}
	return repos.Movements.Create(ctx, mov)
}

// RecordSaleInTx descuenta el stock de una línea de venta y registra el movimiento SALE
// referenciado a la venta.
func RecordSaleInTx(
	ctx context.Context,
	repos Repos,
	product *entity.Product,
	sale *entity.Sale,
	item *entity.SaleItem,
	userID string,
	now time.Time,
) error {
	mov, err := entity.NewStockMovement(sale.TenantID, product.ID, entity.MovementTypeSale, item.Quantity, item.UnitPrice, userID, now)
	if err != nil {
		return err
	}
	mov.ReferenceID = sale.ID
	mov.Notes = "venta " + sale.SaleNumber
	return ApplyMovementInTx(ctx, repos, product, mov)
}

// RevertSaleInTx devuelve al stock lo vendido en la venta y elimina sus movimientos SALE.
// Tras revertir, el stock de cada producto queda como si la venta no hubiera existido.
func RevertSaleInTx(ctx context.Context, repos Repos, sale *entity.Sale, now time.Time) error {
	quantities := sale.QuantitiesByProduct()
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		product, err := LoadProductForUpdate(ctx, repos.Products, sale.TenantID, id)
		if err != nil {
			return err
		}
		if err := product.IncreaseStock(quantities[id]); err != nil {
			return err
		}
		product.UpdatedAt = now
		if err := repos.Products.UpdateStock(ctx, product); err != nil {
			return err
		}
	}
	if _, err := repos.Movements.DeleteByReference(ctx, sale.ID); err != nil {
		return fmt.Errorf("eliminar movimientos de la venta %s: %w", sale.SaleNumber, err)
	}
	return nil
}
