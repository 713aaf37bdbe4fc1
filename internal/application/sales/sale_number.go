package sales

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/domain"
)

const defaultNumberAttempts = 10

// SaleNumberGenerator produce números SALE-YYYYMMDD-NNN únicos por tenant.
// Prueba hasta maxAttempts sufijos aleatorios de 3 dígitos; si todos están tomados usa un sufijo
// derivado de un UUID y solo falla con domain.ErrDuplicate si ese también existe.
type SaleNumberGenerator struct {
	maxAttempts int
	suffix      func() int
	uniqueID    func() string
}

// NewSaleNumberGenerator generador con sufijos aleatorios 000-999.
func NewSaleNumberGenerator() *SaleNumberGenerator {
	return NewSaleNumberGeneratorWith(defaultNumberAttempts, func() int { return rand.IntN(1000) }, func() string {
		return uuid.New().String()
	})
}

// NewSaleNumberGeneratorWith permite inyectar las fuentes de sufijos (tests).
func NewSaleNumberGeneratorWith(maxAttempts int, suffix func() int, uniqueID func() string) *SaleNumberGenerator {
	if maxAttempts <= 0 {
		maxAttempts = defaultNumberAttempts
	}
	return &SaleNumberGenerator{maxAttempts: maxAttempts, suffix: suffix, uniqueID: uniqueID}
}

// Next devuelve un número libre para la fecha now.
func (g *SaleNumberGenerator) Next(ctx context.Context, checker SaleNumberChecker, tenantID string, now time.Time) (string, error) {
	prefix := "SALE-" + now.Format("20060102") + "-"
	for i := 0; i < g.maxAttempts; i++ {
		number := fmt.Sprintf("%s%03d", prefix, g.suffix()%1000)
		taken, err := checker.ExistsNumber(ctx, tenantID, number)
		if err != nil {
			return "", fmt.Errorf("verificar número de venta: %w", err)
		}
		if !taken {
			return number, nil
		}
	}

	id := strings.ToUpper(strings.ReplaceAll(g.uniqueID(), "-", ""))
	if len(id) > 8 {
		id = id[:8]
	}
	number := prefix + id
	taken, err := checker.ExistsNumber(ctx, tenantID, number)
	if err != nil {
		return "", fmt.Errorf("verificar número de venta: %w", err)
	}
	if taken {
		return "", fmt.Errorf("%w: número de venta %s", domain.ErrDuplicate, number)
	}
	return number, nil
}
