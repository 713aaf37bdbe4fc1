package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrProductInactive   = errors.New("producto inactivo")
	ErrEmptySale         = errors.New("la venta debe tener al menos un ítem")
	ErrInvalidDiscount   = errors.New("descuento inválido")
	ErrNoOpAdjustment    = errors.New("el ajuste no cambia la cantidad en stock")
)

// StockError detalla un faltante de stock para que el cliente pueda corregir la solicitud.
// errors.Is(err, ErrInsufficientStock) es verdadero para cualquier *StockError.
type StockError struct {
	ProductID   string
	ProductName string
	Requested   int64
	Available   int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: solicitado %d, disponible %d",
		e.ProductName, e.Requested, e.Available)
}

// Unwrap permite comparar con ErrInsufficientStock.
func (e *StockError) Unwrap() error { return ErrInsufficientStock }
