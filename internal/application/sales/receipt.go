package sales

import (
	"context"
	"fmt"
)

// ReceiptUseCase genera el comprobante PDF de una venta.
type ReceiptUseCase struct {
	sales     *SaleUseCase
	generator ReceiptGenerator
	storeName string
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(sales *SaleUseCase, generator ReceiptGenerator, storeName string) *ReceiptUseCase {
	return &ReceiptUseCase{sales: sales, generator: generator, storeName: storeName}
}

// DownloadReceipt devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, tenantID, saleID string) ([]byte, string, error) {
	sale, err := uc.sales.GetSale(ctx, tenantID, saleID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateSaleReceipt(ctx, uc.storeName, sale)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("venta_%s.pdf", sale.SaleNumber), nil
}
