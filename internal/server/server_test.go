package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotelbooking/internal/config"
	"hotelbooking/internal/lock"
	"hotelbooking/internal/metrics"
	"hotelbooking/internal/modules/booking"
	"hotelbooking/internal/modules/catalog"
	"hotelbooking/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, checks ...Check) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Monitoring.PrometheusEnabled = true
	metrics.Register()

	bookings := repository.NewMemoryBookingRepository()
	rooms := repository.NewMemoryRoomRepository()
	locker := lock.NewLocal()
	bookingSvc := booking.NewService(bookings, rooms, locker, cfg.Booking, metrics.Prometheus{}, zerolog.Nop())
	catalogSvc := catalog.NewService(rooms, bookings, locker, zerolog.Nop())

	modules := []RouteRegistrar{
		booking.NewHandler(bookingSvc, zerolog.Nop()),
		catalog.NewHandler(catalogSvc, zerolog.Nop()),
	}
	return New(cfg, modules, checks, zerolog.Nop())
}

func serve(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"app":"hotel-booking"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, ":8080", s.Addr())
}

func TestServer_Ready(t *testing.T) {
	mr := miniredis.RunT(t)
	client := lock.NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	redisCheck := Check{Name: "redis", Probe: func(ctx context.Context) error { return client.Ping(ctx).Err() }}
	s := newTestServer(t, redisCheck)

	rec := serve(s, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["redis"])

	failing := Check{Name: "database", Probe: func(context.Context) error { return errors.New("dial tcp: refused") }}
	s = newTestServer(t, redisCheck, failing)
	rec = serve(s, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "dial tcp: refused", body.Checks["database"])
}

func TestServer_RoutesAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodPost, "/api/rooms", []byte(`{"roomNumber":"101","roomType":"deluxe","pricePerNight":1000,"maxGuests":2}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(s, http.MethodPost, "/api/bookings", []byte(`{
		"roomId": 1,
		"guestName": "Aigerim Sadykova",
		"guestEmail": "aigerim@example.com",
		"guestPhone": "+77011234567",
		"checkInDate": "2099-01-01",
		"checkOutDate": "2099-01-03",
		"numberOfGuests": 2
	}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(s, http.MethodGet, "/api/bookings?page=1&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pagination"`)

	rec = serve(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hotel_http_requests_total{method="POST",route="/api/bookings",status="201"}`)
	assert.Contains(t, rec.Body.String(), `hotel_bookings_total{outcome="created"}`)
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
