package inventory

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Products  repository.ProductRepository
	Movements repository.StockMovementRepository
	Sales     repository.SaleRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback y ningún cambio queda aplicado.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// ProductLocker serializa las operaciones de stock por producto.
// Lock bloquea todas las claves (en orden, sin duplicados) y devuelve la función que las libera.
type ProductLocker interface {
	Lock(ctx context.Context, productIDs ...string) (release func(), err error)
}
