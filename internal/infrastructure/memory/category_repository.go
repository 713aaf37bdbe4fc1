package memory

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct {
	v view
}

func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if _, ok := st.categories[category.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *category
		st.categories[category.ID] = &c
		return nil
	})
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *entity.Category
	err := r.v.read(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}
