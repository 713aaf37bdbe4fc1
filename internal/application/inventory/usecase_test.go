package inventory_test

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/lock"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
	stocker = "bodega-1"
)

type fixture struct {
	store *memory.Store
	uc    *inventory.StockUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store: store,
		uc:    inventory.NewStockUseCase(store, lock.NewKeyedMutex(), store.Products(), store.Movements(), logger.Nop()),
	}
}

// seed crea el producto en cero y lo lleva a stock con un ajuste, como lo hace el alta de productos.
func (f *fixture) seed(t *testing.T, sku string, price, stock, min int64) string {
	t.Helper()
	p := &entity.Product{
		ID:            "prod-" + sku,
		TenantID:      tenantA,
		SKU:           sku,
		Name:          "Producto " + sku,
		Price:         decimal.NewFromInt(price),
		MinStockLevel: min,
		Status:        entity.ProductStatusActive,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	if stock > 0 {
		_, err := f.uc.PostStockMovement(context.Background(), tenantA, stocker, dto.PostMovementRequest{
			ProductID: p.ID, Type: "ADJUSTMENT", Quantity: stock,
		})
		require.NoError(t, err)
	}
	return p.ID
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) assertConsistent(t *testing.T, id string) {
	t.Helper()
	rec, err := f.uc.Reconcile(context.Background(), tenantA, id)
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "stock %d, libro %d", rec.StockQuantity, rec.LedgerTotal)
	assert.Zero(t, rec.Drift)
}

func TestAdjustStock_FijaCantidadYRegistraDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 1500, 10, 0)

	out, err := f.uc.AdjustStock(ctx, tenantA, stocker, dto.AdjustStockRequest{ProductID: p, NewQuantity: 2, Notes: "conteo"})
	require.NoError(t, err)
	assert.Equal(t, dto.AdjustStockResponse{ProductID: p, OldQuantity: 10, NewQuantity: 2, Adjustment: -8}, *out)
	assert.Equal(t, int64(2), f.product(t, p).StockQuantity)

	list, err := f.uc.ListMovements(ctx, tenantA, p, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	last := list.Items[0]
	assert.Equal(t, "ADJUSTMENT", last.Type)
	assert.Equal(t, int64(-8), last.Quantity)
	assert.Equal(t, int64(-8), last.EffectiveQuantity)
	assert.True(t, last.UnitPrice.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "conteo", last.Notes)
	f.assertConsistent(t, p)
}

func TestAdjustStock_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 1500, 10, 0)

	_, err := f.uc.AdjustStock(ctx, tenantA, stocker, dto.AdjustStockRequest{ProductID: p, NewQuantity: 10})
	assert.ErrorIs(t, err, domain.ErrNoOpAdjustment)
	_, err = f.uc.AdjustStock(ctx, tenantA, stocker, dto.AdjustStockRequest{ProductID: p, NewQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AdjustStock(ctx, tenantB, stocker, dto.AdjustStockRequest{ProductID: p, NewQuantity: 3})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.AdjustStock(ctx, tenantA, stocker, dto.AdjustStockRequest{ProductID: "no-existe", NewQuantity: 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(10), f.product(t, p).StockQuantity)
	f.assertConsistent(t, p)
}

func TestAdjustStock_ProductoInactivoSePuedeContar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 1500, 10, 0)
	prod := f.product(t, p)
	prod.Status = entity.ProductStatusInactive
	require.NoError(t, f.store.Products().Update(ctx, prod))

	_, err := f.uc.AdjustStock(ctx, tenantA, stocker, dto.AdjustStockRequest{ProductID: p, NewQuantity: 0})
	require.NoError(t, err)
	assert.Zero(t, f.product(t, p).StockQuantity)
}

func TestPostStockMovement_SignosPorTipo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 100, 10, 0)

	cases := []struct {
		typ       string
		qty       int64
		effective int64
		after     int64
	}{
		{"PURCHASE", -5, 5, 15},
		{"return", 2, 2, 17},
		{"SALE", 4, -4, 13},
		{"ADJUSTMENT", -3, -3, 10},
	}
	for _, tc := range cases {
		out, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: tc.typ, Quantity: tc.qty})
		require.NoError(t, err, tc.typ)
		assert.Equal(t, tc.effective, out.EffectiveQuantity, tc.typ)
		require.NotNil(t, out.StockAfter)
		assert.Equal(t, tc.after, *out.StockAfter, tc.typ)
		assert.True(t, out.UnitPrice.Equal(decimal.NewFromInt(100)), "precio por defecto")
	}
	f.assertConsistent(t, p)
}

func TestPostStockMovement_SalidaSinStockNoModificaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 100, 3, 0)

	_, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "SALE", Quantity: 4})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "ADJUSTMENT", Quantity: -4})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(3), f.product(t, p).StockQuantity)
	list, err := f.uc.ListMovements(ctx, tenantA, p, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestPostStockMovement_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 100, 3, 0)
	negative := decimal.NewFromInt(-1)

	_, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "TRANSFER", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "PURCHASE", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "PURCHASE", Quantity: 1, UnitPrice: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.PostStockMovement(ctx, tenantB, stocker, dto.PostMovementRequest{ProductID: p, Type: "PURCHASE", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPostStockMovement_SalidaDeProductoInactivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 100, 5, 0)
	prod := f.product(t, p)
	prod.Status = entity.ProductStatusInactive
	require.NoError(t, f.store.Products().Update(ctx, prod))

	_, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "SALE", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductInactive)
	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "ADJUSTMENT", Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrProductInactive)
	assert.Equal(t, int64(5), f.product(t, p).StockQuantity)

	// las entradas siguen permitidas
	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "RETURN", Quantity: 1})
	require.NoError(t, err)
	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "ADJUSTMENT", Quantity: 2})
	require.NoError(t, err)
	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "PURCHASE", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(9), f.product(t, p).StockQuantity)
	f.assertConsistent(t, p)
}

func TestPostStockMovement_CompraActualizaCostoPromedio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 100, 0, 0)

	first := decimal.NewFromInt(40)
	_, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "PURCHASE", Quantity: 10, UnitPrice: &first})
	require.NoError(t, err)
	second := decimal.NewFromInt(70)
	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "PURCHASE", Quantity: 10, UnitPrice: &second})
	require.NoError(t, err)

	prod := f.product(t, p)
	require.NotNil(t, prod.CostPrice)
	assert.True(t, prod.CostPrice.Equal(decimal.NewFromInt(55)), "costo %s", prod.CostPrice)
	assert.Equal(t, int64(20), prod.StockQuantity)
}

func TestPostStockMovement_ReferenciaDeVentaExistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 100, 5, 0)

	item, err := entity.NewSaleItem(p, "Producto P", 1, decimal.NewFromInt(100), decimal.Zero)
	require.NoError(t, err)
	sale, err := entity.NewSale("venta-1", tenantA, "SALE-20260101-001", stocker, []*entity.SaleItem{item}, entity.PaymentMethodCash, decimal.Zero, f.product(t, p).CreatedAt)
	require.NoError(t, err)
	require.NoError(t, f.store.Sales().Create(ctx, sale))

	_, err = f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "SALE", Quantity: 1, ReferenceID: "venta-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	out, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "SALE", Quantity: 1, ReferenceID: "ticket-papel-77"})
	require.NoError(t, err)
	assert.Equal(t, "ticket-papel-77", out.ReferenceID)
}

func TestListMovements_MasRecientePrimeroYPaginado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 100, 10, 0)
	for i := 0; i < 3; i++ {
		_, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "SALE", Quantity: int64(i + 1)})
		require.NoError(t, err)
	}

	list, err := f.uc.ListMovements(ctx, tenantA, p, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Page.Count)
	assert.Equal(t, int64(-3), list.Items[0].EffectiveQuantity)
	assert.Equal(t, int64(-2), list.Items[1].EffectiveQuantity)
	assert.Nil(t, list.Items[0].StockAfter)

	rest, err := f.uc.ListMovements(ctx, tenantA, p, dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest.Items, 2)
	assert.Equal(t, "ADJUSTMENT", rest.Items[1].Type)

	_, err = f.uc.ListMovements(ctx, tenantB, p, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReconcile_DetectaDeriva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "P", 100, 10, 0)
	f.assertConsistent(t, p)

	// escritura directa del stock sin movimiento
	prod := f.product(t, p)
	prod.StockQuantity = 13
	require.NoError(t, f.store.Products().UpdateStock(ctx, prod))

	rec, err := f.uc.Reconcile(ctx, tenantA, p)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.Equal(t, int64(3), rec.Drift)
	assert.Equal(t, int64(10), rec.LedgerTotal)
	assert.Equal(t, 1, rec.Movements)
}

func TestLowStock_PrioridadYSugerido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// faltantes relativos: E 7/7, A 8/10, B 2/3, C 0/5; D está sobre el mínimo
	a := f.seed(t, "A", 100, 2, 10)
	b := f.seed(t, "B", 100, 1, 3)
	c := f.seed(t, "C", 100, 5, 5)
	f.seed(t, "D", 100, 20, 5)
	e := f.seed(t, "E", 100, 0, 7)
	inactive := f.seed(t, "F", 100, 0, 9)
	prod := f.product(t, inactive)
	prod.Status = entity.ProductStatusInactive
	require.NoError(t, f.store.Products().Update(ctx, prod))

	items, err := f.uc.LowStock(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, e, items[0].ProductID)
	assert.Equal(t, int64(7), items[0].Missing)
	assert.Equal(t, int64(11), items[0].SuggestedQty) // ceil(7*1.5) - 0
	assert.Equal(t, a, items[1].ProductID)
	assert.Equal(t, int64(13), items[1].SuggestedQty) // 15 - 2
	assert.Equal(t, b, items[2].ProductID)
	assert.Equal(t, int64(4), items[2].SuggestedQty) // ceil(4.5) - 1
	assert.Equal(t, c, items[3].ProductID)
	assert.Zero(t, items[3].Missing)
	assert.Equal(t, int64(3), items[3].SuggestedQty) // ceil(7.5) - 5

	for i, it := range items {
		assert.Equal(t, i+1, it.Priority)
	}
}

func TestPostStockMovement_CantidadEnormeNoDesbordaElStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "A", 1000, 5, 0)

	for _, tc := range []struct {
		typ string
		qty int64
	}{
		{"PURCHASE", math.MaxInt64},
		{"RETURN", math.MaxInt64},
		{"RETURN", math.MinInt64},
		{"ADJUSTMENT", math.MinInt64},
		{"PURCHASE", entity.MaxMovementQuantity + 1},
	} {
		_, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: tc.typ, Quantity: tc.qty})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%s %d", tc.typ, tc.qty)
	}
	_, err := f.uc.AdjustStock(ctx, tenantA, stocker, dto.AdjustStockRequest{ProductID: p, NewQuantity: math.MaxInt64})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, int64(5), f.product(t, p).StockQuantity)
	list, err := f.uc.ListMovements(ctx, tenantA, p, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	f.assertConsistent(t, p)

	out, err := f.uc.PostStockMovement(ctx, tenantA, stocker, dto.PostMovementRequest{ProductID: p, Type: "PURCHASE", Quantity: entity.MaxMovementQuantity})
	require.NoError(t, err)
	require.NotNil(t, out.StockAfter)
	assert.Equal(t, entity.MaxMovementQuantity+5, *out.StockAfter)
}
