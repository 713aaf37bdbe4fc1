package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain"
)

// PaymentMethod medio de pago de la venta.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "CASH"
	PaymentMethodCard  PaymentMethod = "CARD"
	PaymentMethodMixed PaymentMethod = "MIXED"
)

// ParsePaymentMethod normaliza y valida el medio de pago.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMixed:
		return m, nil
	}
	return "", fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, s)
}

// SaleItem línea de una venta. Pertenece exclusivamente a su Sale.
type SaleItem struct {
	ID             string
	SaleID         string
	ProductID      string
	ProductName    string // resuelto para mostrar, no se persiste
	Quantity       int64
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	LineTotal      decimal.Decimal // Quantity*UnitPrice - DiscountAmount
}

// NewSaleItem valida la línea y calcula su total.
func NewSaleItem(productID, productName string, qty int64, unitPrice, discount decimal.Decimal) (*SaleItem, error) {
	if productID == "" || qty <= 0 {
		return nil, fmt.Errorf("%w: producto y cantidad positiva requeridos", domain.ErrInvalidInput)
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
	}
	gross := unitPrice.Mul(decimal.NewFromInt(qty))
	if discount.IsNegative() || discount.GreaterThan(gross) {
		return nil, fmt.Errorf("%w: el descuento de %s supera el valor de la línea", domain.ErrInvalidDiscount, productName)
	}
	return &SaleItem{
		ID:             uuid.New().String(),
		ProductID:      productID,
		ProductName:    productName,
		Quantity:       qty,
		UnitPrice:      unitPrice,
		DiscountAmount: discount,
		LineTotal:      gross.Sub(discount),
	}, nil
}

// Sale agregado raíz de una venta. Los totales siempre se derivan de los ítems.
type Sale struct {
	ID             string
	TenantID       string
	SaleNumber     string // único por tenant, SALE-YYYYMMDD-NNN
	Items          []*SaleItem
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	CashierID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSale construye la venta y calcula sus totales.
func NewSale(
	id, tenantID, saleNumber, cashierID string,
	items []*SaleItem,
	method PaymentMethod,
	discount decimal.Decimal,
	now time.Time,
) (*Sale, error) {
	s := &Sale{
		ID:         id,
		TenantID:   tenantID,
		SaleNumber: saleNumber,
		CashierID:  cashierID,
		CreatedAt:  now,
	}
	if err := s.ReplaceItems(items, method, discount, now); err != nil {
		return nil, err
	}
	return s, nil
}

// ReplaceItems descarta las líneas actuales, asigna las nuevas y recalcula totales.
func (s *Sale) ReplaceItems(items []*SaleItem, method PaymentMethod, discount decimal.Decimal, now time.Time) error {
	if len(items) == 0 {
		return domain.ErrEmptySale
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	if discount.IsNegative() || discount.GreaterThan(total) {
		return fmt.Errorf("%w: el descuento %s supera el total %s", domain.ErrInvalidDiscount, discount, total)
	}
	for _, it := range items {
		it.SaleID = s.ID
	}
	s.Items = items
	s.PaymentMethod = method
	s.TotalAmount = total
	s.DiscountAmount = discount
	s.FinalAmount = total.Sub(discount)
	s.UpdatedAt = now
	return nil
}

// BelongsTo indica si la venta es del tenant dado.
func (s *Sale) BelongsTo(tenantID string) bool {
	return s.TenantID == tenantID
}

// QuantitiesByProduct suma las cantidades por producto (un producto puede repetirse en varias líneas).
func (s *Sale) QuantitiesByProduct() map[string]int64 {
	out := make(map[string]int64, len(s.Items))
	for _, it := range s.Items {
		out[it.ProductID] += it.Quantity
	}
	return out
}
