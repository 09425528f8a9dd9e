package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/approval"
	"github.com/jhoicas/Bodega-api/internal/application/assembly"
	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/purchasing"
	"github.com/jhoicas/Bodega-api/internal/application/reporting"
	"github.com/jhoicas/Bodega-api/internal/application/sales"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Bodega-api/internal/interfaces/http"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

type object = map[string]any

// newServer arma la API completa sobre el store en memoria.
func newServer(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	ledger := inventory.NewLedger()
	policy := shared.ApprovalPolicy{AdjustmentQuantity: decimal.NewFromInt(100)}
	events := ports.NoopPublisher{}
	reports := store.Reports()

	app := apphttp.NewApp(apphttp.AppConfig{Name: "bodega-test", Log: log})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:        auth.NewAuthUseCase(store, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		CompanyUC:     usecase.NewCompanyUseCase(store),
		UserUC:        usecase.NewUserUseCase(store),
		WarehouseUC:   usecase.NewWarehouseUseCase(store),
		ProductUC:     usecase.NewProductUseCase(store),
		InventoryUC:   inventory.NewUseCase(store, ledger, policy, events, log),
		Replenishment: inventory.NewReplenishmentUseCase(reports),
		SalesUC:       sales.NewUseCase(store, ledger, pdf.NewPackingSlipGenerator(), events, log),
		PurchasingUC:  purchasing.NewUseCase(store, ledger, policy, events, log),
		AssemblyUC:    assembly.NewUseCase(store, ledger, events, log),
		ApprovalUC:    approval.NewUseCase(store, ledger, events, log),
		ReportingUC:   reporting.NewUseCase(reports, store.Repos().AuditLogs),
		DashboardUC:   reporting.NewDashboardUseCase(reports, nil, time.Minute, log),
		JWTSecret:     testJWTSecret,
	})
	return app
}

// call envía body como JSON y decodifica la respuesta cuando es JSON.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, object) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := object{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// bootstrap crea empresa, admin y devuelve su token.
func bootstrap(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, company := call(t, app, http.MethodPost, "/api/companies", "", object{"name": "Bodegas del Norte", "nit": "800197268-4"})
	require.Equal(t, http.StatusCreated, status, company)

	status, body := call(t, app, http.MethodPost, "/api/auth/register", "", object{
		"email": "admin@norte.co", "password": "secreto123", "company_id": company["id"],
	})
	require.Equal(t, http.StatusCreated, status, body)
	return login(t, app, "admin@norte.co", "secreto123")
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/auth/login", "", object{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func TestRouter_Health(t *testing.T) {
	app := newServer(t)
	status, body := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_LoginCredencialesInvalidas(t *testing.T) {
	app := newServer(t)
	bootstrap(t, app)
	status, body := call(t, app, http.MethodPost, "/api/auth/login", "", object{"email": "admin@norte.co", "password": "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestRouter_SegundoRegistroProhibido(t *testing.T) {
	app := newServer(t)
	bootstrap(t, app)
	_, list := call(t, app, http.MethodGet, "/api/companies", "", nil)
	companyID := list["items"].([]any)[0].(object)["id"]

	status, body := call(t, app, http.MethodPost, "/api/auth/register", "", object{
		"email": "otro@norte.co", "password": "secreto123", "company_id": companyID,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestRouter_VentaCompletaConListaDeEmpaque(t *testing.T) {
	app := newServer(t)
	token := bootstrap(t, app)

	status, wh := call(t, app, http.MethodPost, "/api/warehouses", token, object{"code": "PRI", "name": "Principal"})
	require.Equal(t, http.StatusCreated, status, wh)
	status, prod := call(t, app, http.MethodPost, "/api/products", token, object{"sku": "TOR-01", "name": "Tornillo", "price": 100})
	require.Equal(t, http.StatusCreated, status, prod)

	status, item := call(t, app, http.MethodPost, "/api/inventory/receipts", token, object{
		"product_id": prod["id"], "warehouse_id": wh["id"], "quantity": 10, "unit_cost": 50,
	})
	require.Equal(t, http.StatusCreated, status, item)

	status, order := call(t, app, http.MethodPost, "/api/sales-orders", token, object{
		"customer_name": "Ferretería Central",
		"warehouse_id":  wh["id"],
		"items":         []object{{"product_id": prod["id"], "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, status, order)
	assert.Equal(t, "DRAFT", order["status"])
	orderID := order["id"].(string)
	lineID := order["items"].([]any)[0].(object)["id"]

	status, order = call(t, app, http.MethodPost, "/api/sales-orders/"+orderID+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, status, order)
	assert.Equal(t, "CONFIRMED", order["status"])

	// no se puede despachar más de lo reservado
	status, body := call(t, app, http.MethodPost, "/api/sales-orders/"+orderID+"/ship", token, object{
		"lines": []object{{"sales_order_item_id": lineID, "quantity": 5}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	status, shipment := call(t, app, http.MethodPost, "/api/sales-orders/"+orderID+"/ship", token, object{
		"lines": []object{{"sales_order_item_id": lineID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, status, shipment)

	_, order = call(t, app, http.MethodGet, "/api/sales-orders/"+orderID, token, nil)
	assert.Equal(t, "FULFILLED", order["status"])

	_, avail := call(t, app, http.MethodGet, "/api/inventory/availability/"+prod["id"].(string), token, nil)
	assert.Equal(t, "6", avail["on_hand"])
	assert.Equal(t, "0", avail["reserved"])

	req := httptest.NewRequest(http.MethodGet, "/api/shipments/"+shipment["id"].(string)+"/packing-slip", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestRouter_AjusteGrandeRequiereSegundoActor(t *testing.T) {
	app := newServer(t)
	admin := bootstrap(t, app)

	status, u := call(t, app, http.MethodPost, "/api/users", admin, object{
		"email": "super@norte.co", "password": "secreto123", "name": "Supervisora", "role": "supervisor",
	})
	require.Equal(t, http.StatusCreated, status, u)
	supervisor := login(t, app, "super@norte.co", "secreto123")

	_, wh := call(t, app, http.MethodPost, "/api/warehouses", admin, object{"code": "PRI", "name": "Principal"})
	_, prod := call(t, app, http.MethodPost, "/api/products", admin, object{"sku": "CAJ-01", "name": "Caja"})
	_, item := call(t, app, http.MethodPost, "/api/inventory/receipts", admin, object{
		"product_id": prod["id"], "warehouse_id": wh["id"], "quantity": 5, "unit_cost": 2,
	})

	status, adj := call(t, app, http.MethodPost, "/api/inventory/adjustments", admin, object{
		"stock_item_id": item["id"], "new_quantity": 500, "reason": "conteo físico",
	})
	require.Equal(t, http.StatusAccepted, status, adj)
	assert.Equal(t, "PENDING_APPROVAL", adj["status"])
	approvalID := adj["approval_request_id"].(string)

	status, body := call(t, app, http.MethodPost, "/api/approvals/"+approvalID+"/approve", admin, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "SELF_APPROVAL", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/approvals/"+approvalID+"/approve", supervisor, object{"comment": "ok"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "APPROVED", body["status"])

	_, avail := call(t, app, http.MethodGet, "/api/inventory/availability/"+prod["id"].(string), admin, nil)
	assert.Equal(t, "500", avail["on_hand"])

	_, dash := call(t, app, http.MethodGet, "/api/dashboard/summary", admin, nil)
	assert.EqualValues(t, 0, dash["pending_approvals"])
}

func TestRouter_PermisosPorRol(t *testing.T) {
	app := newServer(t)
	admin := bootstrap(t, app)
	_, u := call(t, app, http.MethodPost, "/api/users", admin, object{
		"email": "ventas@norte.co", "password": "secreto123", "name": "Ventas", "role": "vendedor",
	})
	require.NotEmpty(t, u["id"])
	vendedor := login(t, app, "ventas@norte.co", "secreto123")

	status, _ := call(t, app, http.MethodPost, "/api/inventory/adjustments", vendedor, object{"new_quantity": 1, "reason": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodGet, "/api/audit-logs", vendedor, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodGet, "/api/sales-orders", vendedor, nil)
	assert.Equal(t, http.StatusOK, status)

	status, logs := call(t, app, http.MethodGet, "/api/audit-logs?entity_type=user", admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, logs["items"])
}

func TestRouter_ErroresDeValidacion(t *testing.T) {
	app := newServer(t)
	token := bootstrap(t, app)

	status, body := call(t, app, http.MethodGet, "/api/inventory/movements?from=ayer", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/products/no-existe", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, _ = call(t, app, http.MethodGet, "/api/reports/expiring?days=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_PaginacionAcotada(t *testing.T) {
	app := newServer(t)
	token := bootstrap(t, app)

	status, body := call(t, app, http.MethodGet, "/api/products?limit=500&offset=-3", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	page := body["page"].(map[string]any)
	assert.EqualValues(t, 100, page["limit"])
	assert.EqualValues(t, 0, page["offset"])

	status, body = call(t, app, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 20, body["page"].(map[string]any)["limit"])
}
