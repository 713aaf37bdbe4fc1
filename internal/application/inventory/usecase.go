package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	domaininv "github.com/jhoicas/tienda-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// StockUseCase agrupa los casos de uso del libro de stock: movimientos directos, ajustes y consultas.
// Toda mutación corre bajo el lock del producto y dentro de una transacción (TxRunner).
type StockUseCase struct {
	txRunner     TxRunner
	locker       ProductLocker
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	log          *logger.Logger
	now          func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	locker ProductLocker,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{
		txRunner:     txRunner,
		locker:       locker,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		log:          log,
		now:          time.Now,
	}
}

// ListMovements lista el libro de un producto del tenant, del más reciente al más antiguo.
func (uc *StockUseCase) ListMovements(ctx context.Context, tenantID, productID string, page dto.PageRequest) (*dto.StockMovementListResponse, error) {
	if _, err := uc.ownedProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.movementRepo.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m, nil))
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.NewPageResponse(page, len(items)),
	}, nil
}

// Reconcile verifica que el stock del producto sea igual a la suma de cantidades efectivas de su libro.
func (uc *StockUseCase) Reconcile(ctx context.Context, tenantID, productID string) (*dto.ReconciliationResponse, error) {
	product, err := uc.ownedProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	movements, err := uc.movementRepo.ListByProduct(ctx, productID, 0, 0)
	if err != nil {
		return nil, err
	}
	rec := domaininv.Reconcile(product, movements)
	if !rec.Consistent() {
		uc.log.Warn().
			Str("tenant_id", tenantID).
			Str("product_id", productID).
			Int64("stock", rec.StockQuantity).
			Int64("ledger", rec.LedgerTotal).
			Msg("stock y libro de movimientos no coinciden")
	}
	return &dto.ReconciliationResponse{
		ProductID:     rec.ProductID,
		StockQuantity: rec.StockQuantity,
		LedgerTotal:   rec.LedgerTotal,
		Movements:     rec.Movements,
		Drift:         rec.Drift(),
		Consistent:    rec.Consistent(),
	}, nil
}

func (uc *StockUseCase) ownedProduct(ctx context.Context, tenantID, productID string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !product.BelongsTo(tenantID) {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

func toMovementResponse(m *entity.StockMovement, stockAfter *int64) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:                m.ID,
		ProductID:         m.ProductID,
		Type:              string(m.Type),
		Quantity:          m.Quantity,
		EffectiveQuantity: m.EffectiveQuantity,
		UnitPrice:         m.UnitPrice,
		ReferenceID:       m.ReferenceID,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
		StockAfter:        stockAfter,
	}
}
