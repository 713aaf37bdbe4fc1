package entity_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

func TestEffectiveQuantity(t *testing.T) {
	cases := []struct {
		name string
		typ  entity.MovementType
		qty  int64
		want int64
	}{
		{"compra suma", entity.MovementTypePurchase, 5, 5},
		{"compra con signo negativo igual suma", entity.MovementTypePurchase, -5, 5},
		{"devolución suma", entity.MovementTypeReturn, 2, 2},
		{"venta resta", entity.MovementTypeSale, 3, -3},
		{"venta con signo negativo igual resta", entity.MovementTypeSale, -3, -3},
		{"ajuste positivo", entity.MovementTypeAdjustment, 7, 7},
		{"ajuste negativo", entity.MovementTypeAdjustment, -8, -8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := entity.EffectiveQuantity(tc.typ, tc.qty)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEffectiveQuantity_CeroEsInvalido(t *testing.T) {
	_, err := entity.EffectiveQuantity(entity.MovementTypeAdjustment, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseMovementType(t *testing.T) {
	mt, err := entity.ParseMovementType(" purchase ")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypePurchase, mt)

	_, err = entity.ParseMovementType("TRANSFER")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewStockMovement_FijaCantidadEfectiva(t *testing.T) {
	now := time.Now()
	m, err := entity.NewStockMovement("t1", "p1", entity.MovementTypeSale, 4, decimal.NewFromInt(10), "u1", now)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, int64(4), m.Quantity)
	assert.Equal(t, int64(-4), m.EffectiveQuantity)
	assert.False(t, m.IsIncrease())

	_, err = entity.NewStockMovement("t1", "p1", entity.MovementTypePurchase, 1, decimal.NewFromInt(-1), "u1", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEffectiveQuantity_FueraDeRango(t *testing.T) {
	for _, qty := range []int64{math.MinInt64, math.MaxInt64, entity.MaxMovementQuantity + 1, -entity.MaxMovementQuantity - 1} {
		for _, typ := range []entity.MovementType{entity.MovementTypePurchase, entity.MovementTypeReturn, entity.MovementTypeSale, entity.MovementTypeAdjustment} {
			_, err := entity.EffectiveQuantity(typ, qty)
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "%s %d", typ, qty)
		}
	}

	got, err := entity.EffectiveQuantity(entity.MovementTypeSale, -entity.MaxMovementQuantity)
	require.NoError(t, err)
	assert.Equal(t, -entity.MaxMovementQuantity, got)
}
