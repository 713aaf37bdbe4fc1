package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación en memoria del agregado Sale.
type SaleRepo struct {
	v view
}

// Create guarda la venta con sus ítems. El número es único por tenant.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		if numberTaken(st, sale.TenantID, sale.SaleNumber) {
			return domain.ErrDuplicate
		}
		st.sales[sale.ID] = cloneSale(sale)
		return nil
	})
}

// GetByID devuelve la venta con los nombres de producto resueltos o (nil, nil).
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *entity.Sale
	err := r.v.read(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			out = withNames(st, s)
		}
		return nil
	})
	return out, err
}

// Update reemplaza cabecera e ítems.
func (r *SaleRepo) Update(ctx context.Context, sale *entity.Sale) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if _, ok := st.sales[sale.ID]; !ok {
			return domain.ErrNotFound
		}
		st.sales[sale.ID] = cloneSale(sale)
		return nil
	})
}

// Delete elimina la venta y sus ítems.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.sales, id)
		return nil
	})
}

// ExistsNumber indica si el número ya está usado en el tenant.
func (r *SaleRepo) ExistsNumber(ctx context.Context, tenantID, saleNumber string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var taken bool
	err := r.v.read(func(st *state) error {
		taken = numberTaken(st, tenantID, saleNumber)
		return nil
	})
	return taken, err
}

// ListByTenant ventas del tenant, las más recientes primero.
func (r *SaleRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*entity.Sale
	err := r.v.read(func(st *state) error {
		for _, s := range st.sales {
			if s.TenantID == tenantID {
				out = append(out, withNames(st, s))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].SaleNumber > out[j].SaleNumber
	})
	return page(out, limit, offset), nil
}

func numberTaken(st *state, tenantID, number string) bool {
	for _, s := range st.sales {
		if s.TenantID == tenantID && s.SaleNumber == number {
			return true
		}
	}
	return false
}

func withNames(st *state, s *entity.Sale) *entity.Sale {
	c := cloneSale(s)
	for _, it := range c.Items {
		if p, ok := st.products[it.ProductID]; ok {
			it.ProductName = p.Name
		}
	}
	return c
}
