package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-api/internal/application/dto"
)

// LowStock devuelve los productos activos en o bajo su stock mínimo con la cantidad sugerida
// de pedido, ordenados por faltante relativo (más urgente primero).
func (uc *StockUseCase) LowStock(ctx context.Context, tenantID string) ([]dto.LowStockItemDTO, error) {
	products, err := uc.productRepo.ListLowStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItemDTO, 0, len(products))
	for _, p := range products {
		if !p.IsActive() || !p.IsLowStock() {
			continue
		}
		// Stock ideal = 1.5 veces el mínimo (redondeo hacia arriba).
		ideal := (p.MinStockLevel*3 + 1) / 2
		suggested := ideal - p.StockQuantity
		if suggested < 0 {
			suggested = 0
		}
		items = append(items, dto.LowStockItemDTO{
			ProductID:     p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
			MinStockLevel: p.MinStockLevel,
			Missing:       p.MinStockLevel - p.StockQuantity,
			SuggestedQty:  suggested,
		})
	}

	// Primero mayor déficit relativo; luego mayor faltante absoluto; luego SKU para orden estable.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ra, rb := ratio(a), ratio(b)
		if ra != rb {
			return ra > rb
		}
		if a.Missing != b.Missing {
			return a.Missing > b.Missing
		}
		return a.SKU < b.SKU
	})
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}

func ratio(it dto.LowStockItemDTO) float64 {
	if it.MinStockLevel <= 0 {
		return 0
	}
	return float64(it.Missing) / float64(it.MinStockLevel)
}
