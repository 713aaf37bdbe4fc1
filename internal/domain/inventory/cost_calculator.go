package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual int64, costoActual decimal.Decimal, cantEntrada int64, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual + cantEntrada
	if sum <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(stockActual).Mul(costoActual).
		Add(decimal.NewFromInt(cantEntrada).Mul(costoEntrada))
	return num.Div(decimal.NewFromInt(sum)).Round(2)
}
