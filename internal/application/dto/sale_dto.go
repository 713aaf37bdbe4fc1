package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta. UnitPrice vacío = precio actual del producto.
type SaleItemRequest struct {
	ProductID      string           `json:"product_id" validate:"required"`
	Quantity       int64            `json:"quantity" validate:"gt=0,max=1000000000"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Items          []SaleItemRequest `json:"items" validate:"dive"`
	PaymentMethod  string            `json:"payment_method" validate:"required"`
	DiscountAmount *decimal.Decimal  `json:"discount_amount,omitempty"`
}

// UpdateSaleRequest body para PUT /api/sales/:id. Reemplaza todas las líneas.
type UpdateSaleRequest struct {
	Items          []SaleItemRequest `json:"items" validate:"dive"`
	PaymentMethod  string            `json:"payment_method" validate:"required"`
	DiscountAmount *decimal.Decimal  `json:"discount_amount,omitempty"`
}

// SaleItemResponse línea de venta con el nombre del producto resuelto.
type SaleItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID             string             `json:"id"`
	SaleNumber     string             `json:"sale_number"`
	Items          []SaleItemResponse `json:"items"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	FinalAmount    decimal.Decimal    `json:"final_amount"`
	PaymentMethod  string             `json:"payment_method"`
	CashierID      string             `json:"cashier_id"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
