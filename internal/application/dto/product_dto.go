package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// InitialStock > 0 queda registrado en el libro como ajuste inicial.
type CreateProductRequest struct {
	SKU           string           `json:"sku" validate:"required,min=1,max=100"`
	Name          string           `json:"name" validate:"required,min=1,max=200"`
	Barcode       string           `json:"barcode" validate:"max=64"`
	CategoryID    string           `json:"category_id"`
	Price         decimal.Decimal  `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	InitialStock  int64            `json:"initial_stock" validate:"min=0"`
	MinStockLevel int64            `json:"min_stock_level" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock: se maneja vía movimientos).
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Barcode       *string          `json:"barcode" validate:"omitempty,max=64"`
	CategoryID    *string          `json:"category_id"`
	Price         *decimal.Decimal `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	MinStockLevel *int64           `json:"min_stock_level" validate:"omitempty,min=0"`
	Active        *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string           `json:"id"`
	TenantID      string           `json:"tenant_id"`
	CategoryID    string           `json:"category_id,omitempty"`
	SKU           string           `json:"sku"`
	Barcode       string           `json:"barcode,omitempty"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	StockQuantity int64            `json:"stock_quantity"`
	MinStockLevel int64            `json:"min_stock_level"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
