package inventory

import "github.com/jhoicas/tienda-api/internal/domain/entity"

// Reconciliation compara la proyección de stock de un producto con su libro de movimientos.
type Reconciliation struct {
	ProductID     string
	StockQuantity int64
	LedgerTotal   int64 // suma de cantidades efectivas
	Movements     int
}

// Drift diferencia entre el stock y el libro (0 cuando son consistentes).
func (r Reconciliation) Drift() int64 {
	return r.StockQuantity - r.LedgerTotal
}

// Consistent indica si stock y libro coinciden.
func (r Reconciliation) Consistent() bool {
	return r.Drift() == 0
}

// Reconcile suma las cantidades efectivas de los movimientos del producto.
// Los movimientos de otros productos se ignoran.
func Reconcile(product *entity.Product, movements []*entity.StockMovement) Reconciliation {
	rec := Reconciliation{ProductID: product.ID, StockQuantity: product.StockQuantity}
	for _, m := range movements {
		if m.ProductID != product.ID {
			continue
		}
		rec.LedgerTotal += m.EffectiveQuantity
		rec.Movements++
	}
	return rec
}
