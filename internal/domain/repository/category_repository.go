package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// CategoryRepository define el puerto de lectura de categorías usado al crear productos.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
}
