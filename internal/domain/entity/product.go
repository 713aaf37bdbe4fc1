package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain"
)

// ProductStatus ciclo de vida del producto. Los productos nunca se borran físicamente:
// pasan a INACTIVE para conservar las referencias históricas de ventas.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// Product representa un producto del almacén (por tenant).
// StockQuantity es la proyección del libro de movimientos: solo cambia junto con un StockMovement.
type Product struct {
	ID            string
	TenantID      string
	CategoryID    string // vacío si no tiene categoría
	Name          string
	SKU           string // único por tenant
	Barcode       string // opcional, único por tenant cuando existe
	Price         decimal.Decimal
	CostPrice     *decimal.Decimal
	StockQuantity int64
	MinStockLevel int64
	Status        ProductStatus
	Version       int64 // control de concurrencia optimista sobre el stock
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BelongsTo indica si el producto es del tenant dado.
func (p *Product) BelongsTo(tenantID string) bool {
	return p.TenantID == tenantID
}

// IsActive indica si el producto está en estado ACTIVE.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// CanSell es la única verificación de capacidad para operaciones que exigen un producto activo.
func (p *Product) CanSell() error {
	if !p.IsActive() {
		return fmt.Errorf("%w: %s", domain.ErrProductInactive, p.Name)
	}
	return nil
}

// Deactivate pasa el producto a INACTIVE (borrado lógico).
func (p *Product) Deactivate(now time.Time) {
	p.Status = ProductStatusInactive
	p.UpdatedAt = now
}

// Activate vuelve a habilitar el producto.
func (p *Product) Activate(now time.Time) {
	p.Status = ProductStatusActive
	p.UpdatedAt = now
}

// IncreaseStock suma qty (> 0) al stock. Rechaza sumas que desbordan int64.
func (p *Product) IncreaseStock(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: la cantidad a sumar debe ser positiva", domain.ErrInvalidInput)
	}
	if qty > math.MaxInt64-p.StockQuantity {
		return fmt.Errorf("%w: el stock de %s excede el máximo representable", domain.ErrInvalidInput, p.Name)
	}
	p.StockQuantity += qty
	return nil
}

// DecreaseStock resta qty (> 0) del stock. Falla sin modificar nada si no alcanza.
func (p *Product) DecreaseStock(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: la cantidad a restar debe ser positiva", domain.ErrInvalidInput)
	}
	if p.StockQuantity < qty {
		return p.shortage(qty)
	}
	p.StockQuantity -= qty
	return nil
}

// EnsureAvailable verifica que haya qty unidades sin modificar el stock.
func (p *Product) EnsureAvailable(qty int64) error {
	if p.StockQuantity < qty {
		return p.shortage(qty)
	}
	return nil
}

// SetStock fija el stock en qty (>= 0) y devuelve el delta con signo aplicado.
func (p *Product) SetStock(qty int64) (int64, error) {
	if qty < 0 {
		return 0, fmt.Errorf("%w: el stock no puede ser negativo", domain.ErrInvalidInput)
	}
	delta := qty - p.StockQuantity
	p.StockQuantity = qty
	return delta, nil
}

// IsLowStock indica si el stock está en o por debajo del mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

func (p *Product) shortage(requested int64) error {
	return &domain.StockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   requested,
		Available:   p.StockQuantity,
	}
}
