package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cabinrent/internal/app/dto"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/infra/config"
	ginserver "cabinrent/internal/infra/http/gin"
	"cabinrent/internal/infra/obs"
	"cabinrent/internal/infra/security"
)

const (
	adminEmail    = "admin@cabins.test"
	adminPassword = "correct horse battery"
)

type harness struct {
	t      *testing.T
	app    *application
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Env:            "test",
		StorageDriver:  config.DriverMemory,
		IdempotencyTTL: time.Hour,
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		JWTTTL:         time.Hour,
		TariffWeekday:  150000,
		TariffWeekend:  180000,
		TariffHoliday:  200000,
	}
	logger := obs.NewLoggerTo(io.Discard, cfg.Env, slog.LevelError)
	ctx := context.Background()

	app, err := buildApplication(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(context.Background()) })

	hash, err := security.BcryptHasher{Cost: bcrypt.MinCost}.Hash(adminPassword)
	require.NoError(t, err)
	require.NoError(t, app.auth.EnsureAdmin(ctx, adminEmail, hash))

	return &harness{
		t:      t,
		app:    app,
		router: ginserver.NewRouter(obs.Middleware{}, app.health, app.handlers),
	}
}

func (h *harness) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login() string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.AuthResponse
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(h.t, resp.Token)
	return resp.Token
}

func (h *harness) createCabin(token, name string, capacity int) dto.Cabin {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/v1/cabins", token, map[string]any{"name": name, "capacity": capacity, "bedrooms": 2})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	var cabin dto.Cabin
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &cabin))
	return cabin
}

func reservationBody(cabinID, from, to string) map[string]any {
	return map[string]any{
		"cabin_id": cabinID,
		"from":     from,
		"to":       to,
		"guests":   2,
		"guest":    map[string]string{"name": "Lucía", "email": "lucia@example.com"},
	}
}

// day renders the civil date offset days from today.
func day(offset int) string {
	return civil.Today().AddDays(offset).String()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestReservationLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	token := h.login()
	cabin := h.createCabin(token, "Cabaña del Lago", 4)

	rec := h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(30), day(33)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[dto.Reservation](t, rec)
	assert.Equal(t, "pending", first.Status)

	rec = h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(32), day(34)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(33), day(35)))
	require.Equal(t, http.StatusCreated, rec.Code, "checkout day is free for the next check-in")

	rec = h.do(http.MethodGet, "/api/v1/availability?from="+day(31)+"&to="+day(32), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.CabinCollection](t, rec).Items)

	rec = h.do(http.MethodGet, "/api/v1/reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/reservations?cabin_id="+cabin.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[dto.ReservationCollection](t, rec).Total)

	rec = h.do(http.MethodPost, "/api/v1/reservations/"+first.ID+"/cancel", token, map[string]string{"reason": "guest request"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cancelled", decode[dto.Reservation](t, rec).Status)

	rec = h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(31), day(32)))
	assert.Equal(t, http.StatusCreated, rec.Code, "cancelled reservations free their dates")
}

func TestCreateReservationReplaysIdempotencyKey(t *testing.T) {
	h := newHarness(t)
	cabin := h.createCabin(h.login(), "Refugio", 2)
	body := reservationBody(cabin.ID, day(60), day(62))

	first := h.do(http.MethodPost, "/api/v1/reservations", "", body, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := h.do(http.MethodPost, "/api/v1/reservations", "", body, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	assert.Equal(t, decode[dto.Reservation](t, first).ID, decode[dto.Reservation](t, second).ID)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/cabins", "", map[string]any{"name": "x", "capacity": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": adminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservationValidatesGuests(t *testing.T) {
	h := newHarness(t)
	cabin := h.createCabin(h.login(), "Mini", 1)

	rec := h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(40), day(41)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody("missing", day(40), day(41)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(41), day(41)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservationRejectsPastAndOverlongStays(t *testing.T) {
	h := newHarness(t)
	cabin := h.createCabin(h.login(), "Bosque", 2)

	rec := h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(-3), day(-1)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(1), "9999-12-31"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/v1/reservations", "", reservationBody(cabin.ID, day(0), day(2)))
	assert.Equal(t, http.StatusCreated, rec.Code, "checking in today is allowed")

	rec = h.do(http.MethodGet, "/api/v1/pricing/quote?from=0001-01-01&to=9999-12-31", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/cabins/"+cabin.ID+"/calendar?from=2024-01-01&to=2030-01-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPricingEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/pricing/quote?from=2024-03-01&to=2024-03-03", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quote := decode[dto.PriceQuote](t, rec)
	assert.EqualValues(t, 150000+180000+180000, quote.Total)
	assert.Len(t, quote.Days, 3)

	rec = h.do(http.MethodGet, "/api/v1/pricing/days/2024-05-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	day := decode[dto.DayInfo](t, rec)
	assert.True(t, day.IsHoliday)
	assert.EqualValues(t, 200000, day.Rate)

	rec = h.do(http.MethodGet, "/api/v1/pricing/days/2024-13-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/pricing/holidays?year=2024", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[dto.HolidayCollection](t, rec).Items)
}

func TestLoadCabinFixturesSkipsExisting(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "cabins.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: c-lago
  name: Cabaña del Lago
  capacity: 4
  bedrooms: 2
  amenities: [wifi, parrilla]
- id: c-bosque
  name: Cabaña del Bosque
  capacity: 6
  bedrooms: 3
`), 0o600))

	n, err := loadCabinFixtures(context.Background(), h.app.backend.factory, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = loadCabinFixtures(context.Background(), h.app.backend.factory, path)
	require.NoError(t, err)
	assert.Zero(t, n)

	rec := h.do(http.MethodGet, "/api/v1/cabins", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[dto.CabinCollection](t, rec).Total)
}

func TestQuoteCommandPrintsTotal(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "quote", "2024-03-01", "2024-03-03"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "510000")
}
