package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/adjustments.
type AdjustStockRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	NewQuantity int64  `json:"new_quantity" validate:"min=0,max=1000000000"`
	Notes       string `json:"notes" validate:"max=500"`
}

// AdjustStockResponse resultado de un ajuste para auditoría.
type AdjustStockResponse struct {
	ProductID   string `json:"product_id"`
	OldQuantity int64  `json:"old_quantity"`
	NewQuantity int64  `json:"new_quantity"`
	Adjustment  int64  `json:"adjustment"`
}

// PostMovementRequest body para POST /api/stock/movements.
// Quantity: PURCHASE/RETURN/SALE se toman en valor absoluto; ADJUSTMENT es el delta con signo.
// UnitPrice vacío = precio actual del producto.
type PostMovementRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	Type        string           `json:"type" validate:"required"`
	Quantity    int64            `json:"quantity" validate:"required,min=-1000000000,max=1000000000"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	ReferenceID string           `json:"reference_id,omitempty" validate:"max=64"`
	Notes       string           `json:"notes,omitempty" validate:"max=500"`
}

// StockMovementResponse salida de un movimiento del libro de stock.
type StockMovementResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Type              string          `json:"type"`
	Quantity          int64           `json:"quantity"`
	EffectiveQuantity int64           `json:"effective_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	ReferenceID       string          `json:"reference_id,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	StockAfter        *int64          `json:"stock_after,omitempty"` // solo al registrar
}

// StockMovementListResponse lista paginada de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReconciliationResponse compara stock y libro de un producto.
type ReconciliationResponse struct {
	ProductID     string `json:"product_id"`
	StockQuantity int64  `json:"stock_quantity"`
	LedgerTotal   int64  `json:"ledger_total"`
	Movements     int    `json:"movements"`
	Drift         int64  `json:"drift"`
	Consistent    bool   `json:"consistent"`
}

// LowStockItemDTO producto en o por debajo de su stock mínimo.
type LowStockItemDTO struct {
	ProductID     string `json:"product_id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	StockQuantity int64  `json:"stock_quantity"`
	MinStockLevel int64  `json:"min_stock_level"`
	Missing       int64  `json:"missing"`             // MinStockLevel - StockQuantity (0 si está justo en el mínimo)
	SuggestedQty  int64  `json:"suggested_order_qty"` // hasta 1.5 veces el mínimo
	Priority      int    `json:"priority"`            // 1 = más urgente
}
