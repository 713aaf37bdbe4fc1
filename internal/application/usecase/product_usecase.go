package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía movimientos:
// el stock inicial queda registrado como ADJUSTMENT.
type ProductUseCase struct {
	txRunner     inventory.TxRunner
	locker       inventory.ProductLocker
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	log          *logger.Logger
	now          func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	locker inventory.ProductLocker,
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, locker: locker, repo: repo, categoryRepo: categoryRepo, log: log, now: time.Now}
}

// Create crea un nuevo producto activo. SKU y código de barras son únicos por tenant.
func (uc *ProductUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" || in.InitialStock < 0 || in.MinStockLevel < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || (in.CostPrice != nil && in.CostPrice.IsNegative()) {
		return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	if existing, err := uc.repo.GetByTenantAndSKU(ctx, tenantID, sku); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, sku)
	}
	barcode := strings.TrimSpace(in.Barcode)
	if err := uc.checkBarcode(ctx, tenantID, "", barcode); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, tenantID, in.CategoryID); err != nil {
		return nil, err
	}

	now := uc.now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		CategoryID:    in.CategoryID,
		Name:          name,
		SKU:           sku,
		Barcode:       barcode,
		Price:         in.Price,
		CostPrice:     in.CostPrice,
		MinStockLevel: in.MinStockLevel,
		Status:        entity.ProductStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		unitPrice := product.Price
		if product.CostPrice != nil {
			unitPrice = *product.CostPrice
		}
		mov, err := entity.NewStockMovement(tenantID, product.ID, entity.MovementTypeAdjustment, in.InitialStock, unitPrice, userID, now)
		if err != nil {
			return err
		}
		mov.Notes = "stock inicial"
		return inventory.ApplyMovementInTx(ctx, repos, product, mov)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("product_id", product.ID).Str("sku", sku).Msg("producto creado")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto del tenant.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.ProductResponse, error) {
	product, err := uc.owned(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza datos descriptivos y estado. No permite modificar el stock. La escritura se hace
// bajo el lock del producto y sobre una lectura FOR UPDATE, así no pisa el costo promedio que una
// compra concurrente acaba de recalcular.
func (uc *ProductUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if _, err := uc.owned(ctx, tenantID, id); err != nil {
		return nil, err
	}
	var name, barcode string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Barcode != nil {
		barcode = strings.TrimSpace(*in.Barcode)
		if err := uc.checkBarcode(ctx, tenantID, id, barcode); err != nil {
			return nil, err
		}
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, tenantID, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if (in.Price != nil && in.Price.IsNegative()) ||
		(in.CostPrice != nil && in.CostPrice.IsNegative()) ||
		(in.MinStockLevel != nil && *in.MinStockLevel < 0) {
		return nil, domain.ErrInvalidInput
	}

	var product *entity.Product
	err := uc.mutate(ctx, tenantID, id, func(p *entity.Product, now time.Time) bool {
		if in.Name != nil {
			p.Name = name
		}
		if in.Barcode != nil {
			p.Barcode = barcode
		}
		if in.CategoryID != nil {
			p.CategoryID = *in.CategoryID
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.CostPrice != nil {
			cost := *in.CostPrice
			p.CostPrice = &cost
		}
		if in.MinStockLevel != nil {
			p.MinStockLevel = *in.MinStockLevel
		}
		if in.Active != nil {
			if *in.Active {
				p.Activate(now)
			} else {
				p.Deactivate(now)
			}
		}
		p.UpdatedAt = now
		product = p
		return true
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Deactivate pasa el producto a INACTIVE. Las ventas históricas conservan su referencia.
func (uc *ProductUseCase) Deactivate(ctx context.Context, tenantID, id string) error {
	changed := false
	err := uc.mutate(ctx, tenantID, id, func(p *entity.Product, now time.Time) bool {
		if !p.IsActive() {
			return false
		}
		p.Deactivate(now)
		changed = true
		return true
	})
	if err != nil {
		return err
	}
	if changed {
		uc.log.Info().Str("tenant_id", tenantID).Str("product_id", id).Msg("producto desactivado")
	}
	return nil
}

// mutate relee el producto con FOR UPDATE bajo su lock, aplica fn y persiste solo si fn reporta cambios.
func (uc *ProductUseCase) mutate(ctx context.Context, tenantID, id string, fn func(p *entity.Product, now time.Time) bool) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	release, err := uc.locker.Lock(ctx, id)
	if err != nil {
		return fmt.Errorf("bloquear producto: %w", err)
	}
	defer release()

	now := uc.now()
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		product, err := inventory.LoadProductForUpdate(ctx, repos.Products, tenantID, id)
		if err != nil {
			return err
		}
		if !fn(product, now) {
			return nil
		}
		return repos.Products.Update(ctx, product)
	})
}

// GetByCode busca un producto del tenant por código de barras y, si no aparece, por SKU.
// Es la consulta del lector en caja.
func (uc *ProductUseCase) GetByCode(ctx context.Context, tenantID, code string) (*dto.ProductResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByTenantAndBarcode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		if product, err = uc.repo.GetByTenantAndSKU(ctx, tenantID, code); err != nil {
			return nil, err
		}
	}
	if product == nil {
		return nil, fmt.Errorf("%w: código %s", domain.ErrNotFound, code)
	}
	return toProductResponse(product), nil
}

// List lista productos del tenant con paginación.
func (uc *ProductUseCase) List(ctx context.Context, tenantID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByTenant(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.NewPageResponse(page, len(items)),
	}, nil
}

func (uc *ProductUseCase) owned(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
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

func (uc *ProductUseCase) checkBarcode(ctx context.Context, tenantID, productID, barcode string) error {
	if barcode == "" {
		return nil
	}
	existing, err := uc.repo.GetByTenantAndBarcode(ctx, tenantID, barcode)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != productID {
		return fmt.Errorf("%w: código de barras %s", domain.ErrDuplicate, barcode)
	}
	return nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, tenantID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	category, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, categoryID)
	}
	if !category.BelongsTo(tenantID) {
		return domain.ErrForbidden
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	var cost *decimal.Decimal
	if p.CostPrice != nil {
		c := *p.CostPrice
		cost = &c
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		CategoryID:    p.CategoryID,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Price:         p.Price,
		CostPrice:     cost,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
