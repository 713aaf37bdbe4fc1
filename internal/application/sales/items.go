package sales

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// saleInput es la solicitud ya normalizada (creación o actualización).
type saleInput struct {
	items    []dto.SaleItemRequest
	method   entity.PaymentMethod
	discount decimal.Decimal
}

func parseSaleRequest(items []dto.SaleItemRequest, method string, discount *decimal.Decimal) (*saleInput, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptySale
	}
	pm, err := entity.ParsePaymentMethod(method)
	if err != nil {
		return nil, err
	}
	in := &saleInput{items: items, method: pm, discount: decimal.Zero}
	if discount != nil {
		in.discount = *discount
	}
	if in.discount.IsNegative() {
		return nil, fmt.Errorf("%w: descuento negativo", domain.ErrInvalidDiscount)
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cada ítem requiere producto y cantidad positiva", domain.ErrInvalidInput)
		}
		if it.Quantity > entity.MaxMovementQuantity {
			return nil, fmt.Errorf("%w: cantidad por ítem mayor a %d", domain.ErrInvalidInput, entity.MaxMovementQuantity)
		}
	}
	return in, nil
}

// productIDs devuelve los IDs de producto sin duplicados y ordenados.
func (in *saleInput) productIDs() []string {
	seen := make(map[string]struct{}, len(in.items))
	ids := make([]string, 0, len(in.items))
	for _, it := range in.items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	sort.Strings(ids)
	return ids
}

// prepareItems valida cada producto (existencia, tenant, estado y disponibilidad de la cantidad
// total pedida) y construye las líneas en el orden de la solicitud. No modifica stock.
func prepareItems(ctx context.Context, repos inventory.Repos, tenantID string, in *saleInput) ([]*entity.SaleItem, map[string]*entity.Product, error) {
	requested := make(map[string]int64, len(in.items))
	for _, it := range in.items {
		requested[it.ProductID] += it.Quantity
	}

	products := make(map[string]*entity.Product, len(requested))
	for _, id := range in.productIDs() {
		product, err := inventory.LoadProductForUpdate(ctx, repos.Products, tenantID, id)
		if err != nil {
			return nil, nil, err
		}
		if err := product.CanSell(); err != nil {
			return nil, nil, err
		}
		if err := product.EnsureAvailable(requested[id]); err != nil {
			return nil, nil, err
		}
		products[id] = product
	}

	items := make([]*entity.SaleItem, 0, len(in.items))
	for _, it := range in.items {
		product := products[it.ProductID]
		price := product.Price
		if it.UnitPrice != nil {
			price = *it.UnitPrice
		}
		discount := decimal.Zero
		if it.DiscountAmount != nil {
			discount = *it.DiscountAmount
		}
		item, err := entity.NewSaleItem(product.ID, product.Name, it.Quantity, price, discount)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return items, products, nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			LineTotal:      it.LineTotal,
		})
	}
	return &dto.SaleResponse{
		ID:             s.ID,
		SaleNumber:     s.SaleNumber,
		Items:          items,
		TotalAmount:    s.TotalAmount,
		DiscountAmount: s.DiscountAmount,
		FinalAmount:    s.FinalAmount,
		PaymentMethod:  string(s.PaymentMethod),
		CashierID:      s.CashierID,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func saleProductIDs(s *entity.Sale) []string {
	q := s.QuantitiesByProduct()
	ids := make([]string, 0, len(q))
	for id := range q {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
