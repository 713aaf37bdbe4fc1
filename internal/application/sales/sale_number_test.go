package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/domain"
)

type takenNumbers struct {
	numbers map[string]bool
	err     error
	calls   int
}

func (c *takenNumbers) ExistsNumber(_ context.Context, _, number string) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return c.numbers[number], nil
}

func sequence(values ...int) func() int {
	i := 0
	return func() int {
		v := values[i%len(values)]
		i++
		return v
	}
}

var day = time.Date(2026, 3, 7, 15, 4, 5, 0, time.UTC)

func TestSaleNumber_PrimerSufijoLibre(t *testing.T) {
	checker := &takenNumbers{numbers: map[string]bool{"SALE-20260307-007": true}}
	gen := sales.NewSaleNumberGeneratorWith(5, sequence(7, 42), func() string { return "unused" })

	n, err := gen.Next(context.Background(), checker, tenantA, day)
	require.NoError(t, err)
	assert.Equal(t, "SALE-20260307-042", n)
	assert.Equal(t, 2, checker.calls)
}

func TestSaleNumber_RespaldoConUUID(t *testing.T) {
	checker := &takenNumbers{numbers: map[string]bool{"SALE-20260307-001": true}}
	gen := sales.NewSaleNumberGeneratorWith(3, sequence(1), func() string {
		return "9f1c2d3e-4b5a-6789-abcd-ef0123456789"
	})

	n, err := gen.Next(context.Background(), checker, tenantA, day)
	require.NoError(t, err)
	assert.Equal(t, "SALE-20260307-9F1C2D3E", n)
	assert.Equal(t, 4, checker.calls)
}

func TestSaleNumber_RespaldoTambienTomado(t *testing.T) {
	checker := &takenNumbers{numbers: map[string]bool{
		"SALE-20260307-001":      true,
		"SALE-20260307-ABCDEF01": true,
	}}
	gen := sales.NewSaleNumberGeneratorWith(2, sequence(1), func() string { return "abcdef01-0000" })

	_, err := gen.Next(context.Background(), checker, tenantA, day)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestSaleNumber_ErrorDelRepositorio(t *testing.T) {
	boom := errors.New("db caída")
	gen := sales.NewSaleNumberGeneratorWith(2, sequence(1), func() string { return "x" })

	_, err := gen.Next(context.Background(), &takenNumbers{err: boom}, tenantA, day)
	assert.ErrorIs(t, err, boom)
}

func TestSaleNumber_SufijoSiempreDeTresDigitos(t *testing.T) {
	gen := sales.NewSaleNumberGeneratorWith(1, sequence(1234), func() string { return "x" })

	n, err := gen.Next(context.Background(), &takenNumbers{}, tenantA, day)
	require.NoError(t, err)
	assert.Equal(t, "SALE-20260307-234", n)
}
