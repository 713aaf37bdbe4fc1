package sales

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/application/dto"
)

// SaleNumberChecker consulta si un número de venta ya está tomado en el tenant.
type SaleNumberChecker interface {
	ExistsNumber(ctx context.Context, tenantID, saleNumber string) (bool, error)
}

// ReceiptGenerator genera el comprobante PDF de una venta.
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, storeName string, sale *dto.SaleResponse) ([]byte, error)
}
