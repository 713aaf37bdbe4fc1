package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain"
)

// MovementType tipo de movimiento del libro de stock.
type MovementType string

const (
	MovementTypePurchase   MovementType = "PURCHASE"   // entrada por compra
	MovementTypeSale       MovementType = "SALE"       // salida por venta
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // corrección manual, con signo
	MovementTypeReturn     MovementType = "RETURN"     // devolución de cliente
)

// ParseMovementType normaliza y valida el tipo recibido.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeAdjustment, MovementTypeReturn:
		return t, nil
	}
	return "", fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, s)
}

// MaxMovementQuantity tope de unidades por movimiento o línea de venta.
const MaxMovementQuantity int64 = 1_000_000_000

// EffectiveQuantity calcula el delta con signo que un movimiento aplica al stock.
// PURCHASE y RETURN suman |qty|, SALE resta |qty| y ADJUSTMENT aplica qty tal cual viene
// (el llamador ya envía el delta con signo).
func EffectiveQuantity(t MovementType, qty int64) (int64, error) {
	if qty == 0 {
		return 0, fmt.Errorf("%w: la cantidad del movimiento no puede ser cero", domain.ErrInvalidInput)
	}
	if qty > MaxMovementQuantity || qty < -MaxMovementQuantity {
		return 0, fmt.Errorf("%w: la cantidad del movimiento supera %d", domain.ErrInvalidInput, MaxMovementQuantity)
	}
	switch t {
	case MovementTypePurchase, MovementTypeReturn:
		return abs(qty), nil
	case MovementTypeSale:
		return -abs(qty), nil
	case MovementTypeAdjustment:
		return qty, nil
	}
	return 0, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, t)
}

// StockMovement es una entrada inmutable del libro de stock de un producto.
// Solo se elimina al revertir la venta que la originó (ReferenceID).
type StockMovement struct {
	ID                string
	TenantID          string
	ProductID         string
	Type              MovementType
	Quantity          int64 // cantidad tal como se registró
	EffectiveQuantity int64 // delta con signo aplicado al stock, fijado al crear
	UnitPrice         decimal.Decimal
	ReferenceID       string // venta que lo originó (solo SALE), vacío en los demás
	Notes             string
	CreatedBy         string
	CreatedAt         time.Time
}

// NewStockMovement construye un movimiento calculando su cantidad efectiva.
func NewStockMovement(
	tenantID, productID string,
	t MovementType,
	qty int64,
	unitPrice decimal.Decimal,
	createdBy string,
	now time.Time,
) (*StockMovement, error) {
	effective, err := EffectiveQuantity(t, qty)
	if err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
	}
	return &StockMovement{
		ID:                uuid.New().String(),
		TenantID:          tenantID,
		ProductID:         productID,
		Type:              t,
		Quantity:          qty,
		EffectiveQuantity: effective,
		UnitPrice:         unitPrice,
		CreatedBy:         createdBy,
		CreatedAt:         now,
	}, nil
}

// IsIncrease indica si el movimiento suma stock.
func (m *StockMovement) IsIncrease() bool {
	return m.EffectiveQuantity > 0
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
