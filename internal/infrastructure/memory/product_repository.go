package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	v view
}

// Create guarda un producto nuevo. SKU y código de barras son únicos por tenant.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		if clash(st, product) {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = cloneProduct(product)
		return nil
	})
}

// GetByID devuelve una copia del producto o (nil, nil).
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = cloneProduct(p)
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la exclusión la dan el Store y el ProductLocker.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// GetByTenantAndSKU busca por SKU dentro del tenant.
func (r *ProductRepo) GetByTenantAndSKU(ctx context.Context, tenantID, sku string) (*entity.Product, error) {
	return r.find(ctx, func(p *entity.Product) bool { return p.TenantID == tenantID && p.SKU == sku })
}

// GetByTenantAndBarcode busca por código de barras dentro del tenant.
func (r *ProductRepo) GetByTenantAndBarcode(ctx context.Context, tenantID, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.find(ctx, func(p *entity.Product) bool { return p.TenantID == tenantID && p.Barcode == barcode })
}

// Update guarda datos descriptivos y estado. No toca stock ni versión; CostPrice nil conserva el costo guardado.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		stored, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if clash(st, product) {
			return domain.ErrDuplicate
		}
		stored.Name = product.Name
		stored.Barcode = product.Barcode
		stored.CategoryID = product.CategoryID
		stored.Price = product.Price
		stored.MinStockLevel = product.MinStockLevel
		stored.Status = product.Status
		stored.UpdatedAt = product.UpdatedAt
		if product.CostPrice != nil {
			cost := *product.CostPrice
			stored.CostPrice = &cost
		}
		return nil
	})
}

// UpdateStock persiste stock y costo si la versión coincide.
func (r *ProductRepo) UpdateStock(ctx context.Context, product *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		stored, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if stored.Version != product.Version {
			return domain.ErrConflict
		}
		stored.StockQuantity = product.StockQuantity
		if product.CostPrice != nil {
			cost := *product.CostPrice
			stored.CostPrice = &cost
		}
		stored.UpdatedAt = product.UpdatedAt
		stored.Version++
		product.Version = stored.Version
		return nil
	})
}

// ListByTenant lista productos del tenant ordenados por nombre.
func (r *ProductRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	list, err := r.filter(ctx, func(p *entity.Product) bool { return p.TenantID == tenantID })
	if err != nil {
		return nil, err
	}
	return page(list, limit, offset), nil
}

// ListLowStock productos activos del tenant con stock en o bajo el mínimo.
func (r *ProductRepo) ListLowStock(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	return r.filter(ctx, func(p *entity.Product) bool {
		return p.TenantID == tenantID && p.IsActive() && p.IsLowStock()
	})
}

func (r *ProductRepo) find(ctx context.Context, match func(*entity.Product) bool) (*entity.Product, error) {
	list, err := r.filter(ctx, match)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *ProductRepo) filter(ctx context.Context, match func(*entity.Product) bool) ([]*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*entity.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if match(p) {
				out = append(out, cloneProduct(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// clash indica si otro producto del tenant ya usa el SKU o el código de barras.
func clash(st *state, product *entity.Product) bool {
	for _, p := range st.products {
		if p.ID == product.ID || p.TenantID != product.TenantID {
			continue
		}
		if p.SKU == product.SKU {
			return true
		}
		if product.Barcode != "" && p.Barcode == product.Barcode {
			return true
		}
	}
	return false
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
