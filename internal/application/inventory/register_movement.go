package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	domaininv "github.com/jhoicas/tienda-api/internal/domain/inventory"
)

// PostStockMovement registra un movimiento manual (PURCHASE, RETURN, SALE o ADJUSTMENT) fuera del
// flujo de ventas: bloquea el producto, aplica la cantidad efectiva y guarda producto y movimiento
// en la misma transacción.
func (uc *StockUseCase) PostStockMovement(ctx context.Context, tenantID, userID string, in dto.PostMovementRequest) (*dto.StockMovementResponse, error) {
	movType, err := entity.ParseMovementType(in.Type)
	if err != nil {
		return nil, err
	}
	if in.ProductID == "" || in.Quantity == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	release, err := uc.locker.Lock(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("bloquear producto: %w", err)
	}
	defer release()

	now := uc.now()
	var out dto.StockMovementResponse
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := LoadProductForUpdate(ctx, repos.Products, tenantID, in.ProductID)
		if err != nil {
			return err
		}
		unitPrice := product.Price
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		mov, err := entity.NewStockMovement(tenantID, product.ID, movType, in.Quantity, unitPrice, userID, now)
		if err != nil {
			return err
		}
		if !mov.IsIncrease() {
			if err := product.CanSell(); err != nil {
				return err
			}
		}
		if in.ReferenceID != "" && movType == entity.MovementTypeSale {
			// Los movimientos SALE de una venta existente solo los maneja el motor de ventas.
			sale, err := repos.Sales.GetByID(ctx, in.ReferenceID)
			if err != nil {
				return err
			}
			if sale != nil {
				return fmt.Errorf("%w: la referencia pertenece a la venta %s", domain.ErrConflict, sale.SaleNumber)
			}
		}
		mov.ReferenceID = in.ReferenceID
		mov.Notes = in.Notes

		if movType == entity.MovementTypePurchase && in.UnitPrice != nil {
			current := currentCost(product)
			cost := domaininv.CostCalculator(product.StockQuantity, current, mov.EffectiveQuantity, unitPrice)
			product.CostPrice = &cost
		}
		if err := ApplyMovementInTx(ctx, repos, product, mov); err != nil {
			return err
		}
		stock := product.StockQuantity
		out = toMovementResponse(mov, &stock)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("product_id", in.ProductID).
		Str("type", string(movType)).
		Int64("effective_quantity", out.EffectiveQuantity).
		Msg("movimiento de stock registrado")
	return &out, nil
}
