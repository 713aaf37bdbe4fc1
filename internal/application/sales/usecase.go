package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// saleNumberAttempts es cuántas veces se repite la transacción de CreateSale cuando otra venta
// concurrente confirmó el mismo número entre la verificación y el INSERT.
const saleNumberAttempts = 3

var errNumberTaken = errors.New("número de venta tomado por otra venta")

// SaleUseCase crea, modifica y elimina ventas manteniendo el stock y el libro de movimientos
// consistentes: cada operación corre bajo el lock de sus productos y en una sola transacción.
type SaleUseCase struct {
	txRunner inventory.TxRunner
	locker   inventory.ProductLocker
	saleRepo repository.SaleRepository
	numbers  *SaleNumberGenerator
	log      *logger.Logger
	now      func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner inventory.TxRunner,
	locker inventory.ProductLocker,
	saleRepo repository.SaleRepository,
	numbers *SaleNumberGenerator,
	log *logger.Logger,
) *SaleUseCase {
	if numbers == nil {
		numbers = NewSaleNumberGenerator()
	}
	return &SaleUseCase{
		txRunner: txRunner,
		locker:   locker,
		saleRepo: saleRepo,
		numbers:  numbers,
		log:      log,
		now:      time.Now,
	}
}

// CreateSale valida todas las líneas, asigna número, guarda la venta y descuenta el stock
// registrando un movimiento SALE por línea. Si algo falla no queda nada aplicado.
func (uc *SaleUseCase) CreateSale(ctx context.Context, tenantID, userID string, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	in, err := parseSaleRequest(req.Items, req.PaymentMethod, req.DiscountAmount)
	if err != nil {
		return nil, err
	}

	release, err := uc.locker.Lock(ctx, in.productIDs()...)
	if err != nil {
		return nil, fmt.Errorf("bloquear productos: %w", err)
	}
	defer release()

	now := uc.now()
	var sale *entity.Sale
	for attempt := 1; ; attempt++ {
		sale, err = uc.createSaleTx(ctx, tenantID, userID, in, now)
		if err == nil {
			break
		}
		if !errors.Is(err, errNumberTaken) || attempt == saleNumberAttempts {
			return nil, err
		}
		uc.log.Warn().Str("tenant_id", tenantID).Int("attempt", attempt).Msg("número de venta ocupado, se reintenta la venta")
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Int("items", len(sale.Items)).
		Str("final_amount", sale.FinalAmount.StringFixed(2)).
		Msg("venta registrada")
	return toSaleResponse(sale), nil
}

// createSaleTx corre una venta completa en una transacción. Si el INSERT choca con el número de una
// venta confirmada en paralelo, el error envuelve errNumberTaken y domain.ErrDuplicate.
func (uc *SaleUseCase) createSaleTx(ctx context.Context, tenantID, userID string, in *saleInput, now time.Time) (*entity.Sale, error) {
	var sale *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		items, products, err := prepareItems(ctx, repos, tenantID, in)
		if err != nil {
			return err
		}
		number, err := uc.numbers.Next(ctx, repos.Sales, tenantID, now)
		if err != nil {
			return err
		}
		sale, err = entity.NewSale(uuid.New().String(), tenantID, number, userID, items, in.method, in.discount, now)
		if err != nil {
			return err
		}
		if err := repos.Sales.Create(ctx, sale); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return fmt.Errorf("%w: %w", errNumberTaken, err)
			}
			return err
		}
		for _, item := range sale.Items {
			if err := inventory.RecordSaleInTx(ctx, repos, products[item.ProductID], sale, item, userID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// UpdateSale reemplaza las líneas de la venta: devuelve al stock lo vendido, elimina sus
// movimientos, valida las nuevas líneas contra el stock restaurado y las vuelve a aplicar con el
// mismo ID de venta.
func (uc *SaleUseCase) UpdateSale(ctx context.Context, tenantID, userID, saleID string, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	in, err := parseSaleRequest(req.Items, req.PaymentMethod, req.DiscountAmount)
	if err != nil {
		return nil, err
	}
	current, err := uc.ownedSale(ctx, uc.saleRepo, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	locked := union(saleProductIDs(current), in.productIDs())

	release, err := uc.locker.Lock(ctx, locked...)
	if err != nil {
		return nil, fmt.Errorf("bloquear productos: %w", err)
	}
	defer release()

	now := uc.now()
	var sale *entity.Sale
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		var err error
		sale, err = uc.ownedSale(ctx, repos.Sales, tenantID, saleID)
		if err != nil {
			return err
		}
		if !covers(locked, saleProductIDs(sale)) {
			return fmt.Errorf("%w: la venta %s cambió durante la actualización", domain.ErrConflict, sale.SaleNumber)
		}
		if err := inventory.RevertSaleInTx(ctx, repos, sale, now); err != nil {
			return err
		}
		items, products, err := prepareItems(ctx, repos, tenantID, in)
		if err != nil {
			return err
		}
		if err := sale.ReplaceItems(items, in.method, in.discount, now); err != nil {
			return err
		}
		if err := repos.Sales.Update(ctx, sale); err != nil {
			return err
		}
		for _, item := range sale.Items {
			if err := inventory.RecordSaleInTx(ctx, repos, products[item.ProductID], sale, item, userID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Int("items", len(sale.Items)).
		Msg("venta actualizada")
	return toSaleResponse(sale), nil
}

// DeleteSale devuelve al stock lo vendido, elimina los movimientos de la venta y luego la venta.
func (uc *SaleUseCase) DeleteSale(ctx context.Context, tenantID, saleID string) error {
	current, err := uc.ownedSale(ctx, uc.saleRepo, tenantID, saleID)
	if err != nil {
		return err
	}
	locked := saleProductIDs(current)

	release, err := uc.locker.Lock(ctx, locked...)
	if err != nil {
		return fmt.Errorf("bloquear productos: %w", err)
	}
	defer release()

	now := uc.now()
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		sale, err := uc.ownedSale(ctx, repos.Sales, tenantID, saleID)
		if err != nil {
			return err
		}
		if !covers(locked, saleProductIDs(sale)) {
			return fmt.Errorf("%w: la venta %s cambió durante la eliminación", domain.ErrConflict, sale.SaleNumber)
		}
		if err := inventory.RevertSaleInTx(ctx, repos, sale, now); err != nil {
			return err
		}
		return repos.Sales.Delete(ctx, sale.ID)
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("sale_id", current.ID).
		Str("sale_number", current.SaleNumber).
		Msg("venta eliminada")
	return nil
}

// GetSale obtiene una venta del tenant con los nombres de producto resueltos.
func (uc *SaleUseCase) GetSale(ctx context.Context, tenantID, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.ownedSale(ctx, uc.saleRepo, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// ListSales lista las ventas del tenant, las más recientes primero.
func (uc *SaleUseCase) ListSales(ctx context.Context, tenantID string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	list, err := uc.saleRepo.ListByTenant(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.NewPageResponse(page, len(items)),
	}, nil
}

func (uc *SaleUseCase) ownedSale(ctx context.Context, repo repository.SaleRepository, tenantID, saleID string) (*entity.Sale, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if !sale.BelongsTo(tenantID) {
		return nil, domain.ErrForbidden
	}
	return sale, nil
}

func covers(locked, ids []string) bool {
	set := make(map[string]struct{}, len(locked))
	for _, id := range locked {
		set[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
