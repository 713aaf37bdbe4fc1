package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/internal/infrastructure/lock"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/tienda-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/tienda-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/tienda-api/pkg/jwt"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// buildAPI arma la API completa sobre el backend en memoria.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	locker := lock.NewKeyedMutex()
	log := logger.Nop()

	saleUC := sales.NewSaleUseCase(store, locker, store.Sales(), nil, log)
	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC: usecase.NewProductUseCase(store, locker, store.Products(), store.Categories(), log),
		StockUC:   inventory.NewStockUseCase(store, locker, store.Products(), store.Movements(), log),
		SaleUC:    saleUC,
		ReceiptUC: sales.NewReceiptUseCase(saleUC, infrapdf.NewMarotoReceiptGenerator(language.Spanish), "Tienda Test"),
		Tokens:    testVerifier(t),
		Log:       log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewBuffer(b)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, resp).Code
}

func createProduct(t *testing.T, app *fiber.App, sku string, stock int64) dto.ProductResponse {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/products", pkgjwt.RoleStocker, map[string]any{
		"sku": sku, "name": "Producto " + sku, "price": 1000, "initial_stock": stock, "min_stock_level": 5,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[dto.ProductResponse](t, resp)
}

func TestAPI_Health(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPI_SinTokenEs401(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_PermisosPorRol(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "A", 10)

	resp := call(t, app, http.MethodPost, "/api/products", pkgjwt.RoleCashier, map[string]any{"sku": "B", "name": "B"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/products/"+p.ID, pkgjwt.RoleCashier, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleCashier, map[string]any{"product_id": p.ID, "new_quantity": 1})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/sales", pkgjwt.RoleStocker, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAPI_CicloDeVenta(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "A", 10)

	resp := call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier, map[string]any{
		"items":          []map[string]any{{"product_id": p.ID, "quantity": 4}},
		"payment_method": "CASH",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, testUserID, sale.CashierID)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Producto A", sale.Items[0].ProductName)

	resp = call(t, app, http.MethodGet, "/api/products/"+p.ID, pkgjwt.RoleAdmin, nil)
	assert.Equal(t, int64(6), decode[dto.ProductResponse](t, resp).StockQuantity)

	resp = call(t, app, http.MethodPut, "/api/sales/"+sale.ID, pkgjwt.RoleCashier, map[string]any{
		"items":          []map[string]any{{"product_id": p.ID, "quantity": 7}},
		"payment_method": "CARD",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "CARD", decode[dto.SaleResponse](t, resp).PaymentMethod)

	resp = call(t, app, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", pkgjwt.RoleCashier, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "venta_"+sale.SaleNumber+".pdf")
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	resp = call(t, app, http.MethodDelete, "/api/sales/"+sale.ID, pkgjwt.RoleAdmin, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/products/"+p.ID, pkgjwt.RoleAdmin, nil)
	assert.Equal(t, int64(10), decode[dto.ProductResponse](t, resp).StockQuantity)

	resp = call(t, app, http.MethodGet, "/api/stock/products/"+p.ID+"/reconcile", pkgjwt.RoleStocker, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.ReconciliationResponse](t, resp).Consistent)

	resp = call(t, app, http.MethodGet, "/api/sales/"+sale.ID, pkgjwt.RoleCashier, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestAPI_ErroresDeVenta(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "A", 2)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"json inválido", `{"items": [`, fiber.StatusBadRequest, "INVALID_BODY"},
		{"sin ítems", map[string]any{"items": []any{}, "payment_method": "CASH"}, fiber.StatusBadRequest, "EMPTY_SALE"},
		{"cantidad cero", map[string]any{"items": []map[string]any{{"product_id": p.ID, "quantity": 0}}, "payment_method": "CASH"}, fiber.StatusBadRequest, "VALIDATION"},
		{"descuento excesivo", map[string]any{"items": []map[string]any{{"product_id": p.ID, "quantity": 1}}, "payment_method": "CASH", "discount_amount": 5000}, fiber.StatusBadRequest, "INVALID_DISCOUNT"},
		{"sin stock", map[string]any{"items": []map[string]any{{"product_id": p.ID, "quantity": 3}}, "payment_method": "CASH"}, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
		{"producto inexistente", map[string]any{"items": []map[string]any{{"product_id": "nope", "quantity": 1}}, "payment_method": "CASH"}, fiber.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}
}

func TestAPI_ValidacionIndicaCampo(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "A", 2)

	resp := call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier, map[string]any{
		"items": []map[string]any{{"product_id": p.ID, "quantity": 0}}, "payment_method": "CASH",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "CreateSaleRequest.Items[0].Quantity", body.Field)
}

func TestAPI_Stock(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "A", 10)

	resp := call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleStocker, map[string]any{"product_id": p.ID, "new_quantity": 2})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	adj := decode[dto.AdjustStockResponse](t, resp)
	assert.Equal(t, int64(-8), adj.Adjustment)

	resp = call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleStocker, map[string]any{"product_id": p.ID, "new_quantity": 2})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NOOP_ADJUSTMENT", errorCode(t, resp))

	resp = call(t, app, http.MethodPost, "/api/stock/movements", pkgjwt.RoleStocker, map[string]any{"product_id": p.ID, "type": "PURCHASE", "quantity": 1, "unit_price": 600})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	mov := decode[dto.StockMovementResponse](t, resp)
	require.NotNil(t, mov.StockAfter)
	assert.Equal(t, int64(3), *mov.StockAfter)

	resp = call(t, app, http.MethodGet, "/api/stock/low", pkgjwt.RoleAdmin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	low := decode[[]dto.LowStockItemDTO](t, resp)
	require.Len(t, low, 1)
	assert.Equal(t, p.ID, low[0].ProductID)
	assert.Equal(t, int64(5), low[0].SuggestedQty)

	resp = call(t, app, http.MethodGet, "/api/stock/products/"+p.ID+"/movements?limit=2", pkgjwt.RoleStocker, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[dto.StockMovementListResponse](t, resp)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, "PURCHASE", list.Items[0].Type)
}

func TestAPI_ProductoPorCodigo(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "ARROZ", 3)

	resp := call(t, app, http.MethodGet, "/api/products/code/ARROZ", pkgjwt.RoleCashier, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, p.ID, decode[dto.ProductResponse](t, resp).ID)

	resp = call(t, app, http.MethodGet, "/api/products/code/NADA", pkgjwt.RoleCashier, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestAPI_CantidadFueraDeRango(t *testing.T) {
	app := buildAPI(t)
	p := createProduct(t, app, "A", 5)

	resp := call(t, app, http.MethodPost, "/api/stock/movements", pkgjwt.RoleStocker, map[string]any{
		"product_id": p.ID, "type": "PURCHASE", "quantity": int64(9223372036854775807),
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))

	resp = call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier, map[string]any{
		"items": []map[string]any{{"product_id": p.ID, "quantity": 2000000000}}, "payment_method": "CASH",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))

	resp = call(t, app, http.MethodGet, "/api/products/"+p.ID, pkgjwt.RoleStocker, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(5), decode[dto.ProductResponse](t, resp).StockQuantity)
}
