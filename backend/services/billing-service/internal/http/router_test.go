package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	libmetrics "greenvolt/backend/libs/metrics"
	"greenvolt/backend/services/billing-service/internal/http/handlers"
	"greenvolt/backend/services/billing-service/internal/repository/memory"
	"greenvolt/backend/services/billing-service/internal/service"
)

const (
	alice = 1
	bob   = 2
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	store.AddUser(alice, bob)
	logger := zap.NewNop()

	pricing := service.NewPricingService(store.Prices(), nil, nil, logger)
	routes := Routes{
		Pricing:  handlers.NewPricingHandler(pricing, logger),
		Meters:   handlers.NewMeterHandler(service.NewMeterService(store.Users(), store.Meters(), nil, logger), logger),
		Readings: handlers.NewReadingHandler(service.NewReadingService(store.Meters(), store.Readings(), nil, logger), logger),
		Charging: handlers.NewChargingHandler(
			service.NewChargingService(store.Users(), store.Sessions(), pricing, nil, nil, logger), logger),
		Consumption: handlers.NewConsumptionHandler(
			service.NewConsumptionService(store.Users(), store.Meters(), store.Consumption(), logger), logger),
		Billing: handlers.NewBillingHandler(service.NewBillingService(
			store.Users(), store.Meters(), store.Readings(), store.Sessions(), pricing, nil, logger), logger),
		Health: handlers.NewHealthHandler(),
	}
	return NewRouter(routes, libmetrics.New("test"))
}

func call(t *testing.T, h http.Handler, method, path string, user int, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user > 0 {
		req.Header.Set(handlers.UserIDHeader, strconv.Itoa(user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// seed prices 09:00 and 10:00 on 2025-08-01 at 0.25 and gives alice meter 1
// with a 2 kWh reading at 09:15.
func seed(t *testing.T, h http.Handler) {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/pricing/bulk", alice, []map[string]interface{}{
		{"hour_start": "2025-08-01T09:00:00Z", "price_per_kwh": 0.25},
		{"date": "2025-08-01T10:20:00", "price_per_kwh": 0.25},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodPost, "/meters", alice, map[string]interface{}{
		"serial_number": "GV-0001", "location": "garage", "user_id": alice,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodPost, "/readings", alice, map[string]interface{}{
		"meter_id": 1, "energy_kwh": 2, "timestamp": "2025-08-01T09:15:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCallerHeaderRequired(t *testing.T) {
	h := newTestRouter(t)

	rec := call(t, h, http.MethodGet, "/billing/1?start=2025-08-01&end=2025-08-01", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/meters/user/1", nil)
	req.Header.Set(handlers.UserIDHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSetPriceStatus(t *testing.T) {
	h := newTestRouter(t)
	body := map[string]interface{}{"hour_start": "2025-08-01T09:40:00Z", "price_per_kwh": 0.3}

	rec := call(t, h, http.MethodPost, "/pricing", alice, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "added", out["status"])
	assert.Equal(t, "2025-08-01T09:00:00Z", out["hour_start"])

	rec = call(t, h, http.MethodPost, "/pricing", alice, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "updated", decode(t, rec)["status"])

	rec = call(t, h, http.MethodPost, "/pricing", alice, map[string]interface{}{"hour_start": "2025-08-01T09:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/pricing", alice, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkPricingRejectsMissingPrice(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	rec := call(t, h, http.MethodPost, "/pricing/bulk", alice, []map[string]interface{}{
		{"hour_start": "2025-08-01T09:00:00Z"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Results []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "failed", out.Results[0]["status"])

	rec = call(t, h, http.MethodGet, "/pricing/rate?at=2025-08-01T09:30:00Z", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.25, decode(t, rec)["price_per_kwh"], 1e-9)

	rec = call(t, h, http.MethodGet, "/billing/1?start=2025-08-01&end=2025-08-01", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bill := decode(t, rec)
	assert.InDelta(t, 0.5, bill["total_cost"], 1e-9)
	assert.InDelta(t, 0, bill["missing_rate_hours"], 1e-9)
}

func TestRateLookup(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	rec := call(t, h, http.MethodGet, "/pricing/rate?at=2025-08-01T10:59:59Z", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, true, out["found"])
	assert.InDelta(t, 0.25, out["price_per_kwh"], 1e-9)

	rec = call(t, h, http.MethodGet, "/pricing/rate?at=2025-08-01T11:00:00Z", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["found"])

	rec = call(t, h, http.MethodGet, "/pricing?start=2025-08-01&end=2025-08-01", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var prices []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prices))
	assert.Len(t, prices, 2)
}

func TestBillFlow(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	rec := call(t, h, http.MethodGet, "/billing/1?start=2025-08-01&end=2025-08-01", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bill := decode(t, rec)
	assert.InDelta(t, 2.0, bill["total_kwh"], 1e-9)
	assert.InDelta(t, 0.5, bill["total_cost"], 1e-9)
	assert.Len(t, bill["daily_breakdown"], 1)

	rec = call(t, h, http.MethodGet, "/billing/1/detailed_hourly?start=2025-08-01&end=2025-08-01", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["hourly_breakdown"], 1)

	rec = call(t, h, http.MethodGet, "/billing/1/items?start=2025-08-01&end=2025-08-01", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)

	rec = call(t, h, http.MethodGet, "/analytics/1?start=2025-08-01&end=2025-08-01", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 9.0, decode(t, rec)["peak_usage_hour"], 1e-9)
}

func TestBillErrors(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	rec := call(t, h, http.MethodGet, "/billing/1?start=2025-08-01&end=2025-08-01", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, http.MethodGet, "/billing/1?start=2025-08-05&end=2025-08-01", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodGet, "/billing/1?start=yesterday&end=2025-08-01", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/billing/1", alice, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = call(t, h, http.MethodGet, "/billing/abc", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	rec := call(t, h, http.MethodGet, "/billing/1/export?start=2025-08-01&end=2025-08-01&format=xlsx", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bill-1-2025-08-01-2025-08-01.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = call(t, h, http.MethodGet, "/billing/1/export?start=2025-08-01&end=2025-08-01", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = call(t, h, http.MethodGet, "/billing/1/export?start=2025-08-01&end=2025-08-01&format=csv", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChargingSession(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	rec := call(t, h, http.MethodPost, "/ev-charging", alice, map[string]interface{}{
		"user_id": alice, "start_time": "2025-08-01T09:30:00Z", "end_time": "2025-08-01T10:30:00Z", "energy_kwh": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.InDelta(t, 1.0, out["cost"], 1e-9)
	assert.Len(t, out["buckets"], 2)
	assert.InDelta(t, 0, out["missing_rate_hours"], 1e-9)

	rec = call(t, h, http.MethodPost, "/ev-charging", bob, map[string]interface{}{
		"user_id": alice, "start_time": "2025-08-01T09:30:00Z", "energy_kwh": 4,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, http.MethodGet, "/ev-charging/1/monthly-summary?month=2025-08", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode(t, rec)
	assert.InDelta(t, 1, summary["sessions"], 1e-9)
	assert.InDelta(t, 1.0, summary["total_cost"], 1e-9)

	rec = call(t, h, http.MethodGet, "/ev-charging/1", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "["))
}

func TestReadingTotals(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	rec := call(t, h, http.MethodGet, "/readings/1/daily?date=2025-08-01", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 2.0, decode(t, rec)["total_kwh"], 1e-9)

	rec = call(t, h, http.MethodGet, "/readings/1/monthly?month=2025-08", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 2.0, decode(t, rec)["total_kwh"], 1e-9)

	rec = call(t, h, http.MethodGet, "/readings/1", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, http.MethodGet, "/readings/99", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConsumptionBulk(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	rec := call(t, h, http.MethodPost, "/consumption/bulk", alice, []map[string]interface{}{
		{"user_id": alice, "smart_meter_id": 1, "timestamp": "2025-08-01T08:00:00", "energy_kwh": 1.5},
		{"user_id": alice, "smart_meter_id": 42, "timestamp": "2025-08-01T08:00:00", "energy_kwh": 1},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.InDelta(t, 1, out["uploaded_count"], 1e-9)
	assert.InDelta(t, 1, out["failed_count"], 1e-9)

	rec = call(t, h, http.MethodGet, "/consumption/1?start=2025-08-01T00:00:00&end=2025-08-01T23:59:59", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "2025-08-01T08:00:00Z", records[0]["timestamp"])

	rec = call(t, h, http.MethodGet, "/consumption/1?start=bad&end=2025-08-01T23:59:59", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/consumption", alice, map[string]interface{}{
		"user_id": alice, "smart_meter_id": 1, "timestamp": "2025-08-01T12:00:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "energy_kwh")
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := call(t, h, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	call(t, h, http.MethodGet, "/pricing/rate?at=2025-08-01T10:00:00Z", alice, nil)
	rec = call(t, h, http.MethodGet, "/metrics", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{code="200",route="/pricing/rate"} 1`)
}
