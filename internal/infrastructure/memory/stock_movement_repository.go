package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación en memoria del libro de stock.
type StockMovementRepo struct {
	v view
}

// Create agrega un movimiento al libro.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == movement.ID {
				return domain.ErrDuplicate
			}
		}
		st.movements = append(st.movements, cloneMovement(movement))
		return nil
	})
}

// ListByProduct del más reciente al más antiguo; limit <= 0 devuelve todos.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type indexed struct {
		m   *entity.StockMovement
		pos int
	}
	var found []indexed
	err := r.v.read(func(st *state) error {
		for i, m := range st.movements {
			if m.ProductID == productID {
				found = append(found, indexed{m: cloneMovement(m), pos: i})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(found, func(i, j int) bool {
		if !found[i].m.CreatedAt.Equal(found[j].m.CreatedAt) {
			return found[i].m.CreatedAt.After(found[j].m.CreatedAt)
		}
		return found[i].pos > found[j].pos
	})
	out := make([]*entity.StockMovement, 0, len(found))
	for _, f := range found {
		out = append(out, f.m)
	}
	return page(out, limit, offset), nil
}

// ListByReference movimientos con la referencia dada, en orden de registro.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*entity.StockMovement
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if referenceID != "" && m.ReferenceID == referenceID {
				out = append(out, cloneMovement(m))
			}
		}
		return nil
	})
	return out, err
}

// DeleteByReference elimina los movimientos SALE de una venta.
func (r *StockMovementRepo) DeleteByReference(ctx context.Context, referenceID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var deleted int64
	err := r.v.write(func(st *state) error {
		kept := st.movements[:0]
		for _, m := range st.movements {
			if referenceID != "" && m.ReferenceID == referenceID && m.Type == entity.MovementTypeSale {
				deleted++
				continue
			}
			kept = append(kept, m)
		}
		st.movements = kept
		return nil
	})
	return deleted, err
}
