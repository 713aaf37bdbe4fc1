package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// AdjustStock fija el stock de un producto en NewQuantity y registra un ADJUSTMENT con el delta
// con signo (nuevo - anterior) al precio actual del producto. Un ajuste sin cambio se rechaza con
// domain.ErrNoOpAdjustment porque el libro no admite movimientos de cantidad cero.
func (uc *StockUseCase) AdjustStock(ctx context.Context, tenantID, userID string, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	if in.ProductID == "" || in.NewQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}

	release, err := uc.locker.Lock(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("bloquear producto: %w", err)
	}
	defer release()

	now := uc.now()
	var out dto.AdjustStockResponse
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := LoadProductForUpdate(ctx, repos.Products, tenantID, in.ProductID)
		if err != nil {
			return err
		}
		old := product.StockQuantity
		if in.NewQuantity == old {
			return domain.ErrNoOpAdjustment
		}
		delta, err := product.SetStock(in.NewQuantity)
		if err != nil {
			return err
		}
		mov, err := entity.NewStockMovement(tenantID, product.ID, entity.MovementTypeAdjustment, delta, product.Price, userID, now)
		if err != nil {
			return err
		}
		mov.Notes = in.Notes
		product.UpdatedAt = now
		if err := repos.Products.UpdateStock(ctx, product); err != nil {
			return err
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return err
		}
		out = dto.AdjustStockResponse{
			ProductID:   product.ID,
			OldQuantity: old,
			NewQuantity: product.StockQuantity,
			Adjustment:  delta,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("product_id", in.ProductID).
		Int64("old_quantity", out.OldQuantity).
		Int64("new_quantity", out.NewQuantity).
		Msg("ajuste de stock registrado")
	return &out, nil
}

func currentCost(p *entity.Product) decimal.Decimal {
	if p.CostPrice == nil {
		return decimal.Zero
	}
	return *p.CostPrice
}
