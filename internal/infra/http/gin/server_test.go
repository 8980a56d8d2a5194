package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/dto"
	cabinsapp "cabinrent/internal/app/handlers/cabins"
	pricingapp "cabinrent/internal/app/handlers/pricing"
	reservationsapp "cabinrent/internal/app/handlers/reservations"
	"cabinrent/internal/app/policies"
	"cabinrent/internal/app/queries"
	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/infra/obs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCommands struct {
	got    commands.Command
	ctx    context.Context
	result any
	err    error
}

func (s *stubCommands) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	s.got, s.ctx = cmd, ctx
	return s.result, s.err
}

type stubQueries struct {
	got    queries.Query
	result any
	err    error
}

func (s *stubQueries) Ask(_ context.Context, q queries.Query) (any, error) {
	s.got = q
	return s.result, s.err
}

type stubResolver map[string]policies.Principal

func (r stubResolver) Resolve(_ context.Context, token string) (policies.Principal, error) {
	p, ok := r[token]
	if !ok {
		return policies.Principal{}, apperr.Unauthorized("invalid token")
	}
	return p, nil
}

func newTestRouter(cmds *stubCommands, qs *stubQueries) *gin.Engine {
	return NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Availability: AvailabilityHandler{Queries: qs},
		Pricing:      PricingHandler{Queries: qs},
		Cabins:       CabinHandler{Commands: cmds, Queries: qs},
		Reservations: ReservationHandler{Commands: cmds, Queries: qs},
		Auth:         AuthHandler{},
		AuthMiddleware: AuthMiddleware{Resolver: stubResolver{
			"admin-token": {ID: "u1", Email: "admin@example.com", Roles: []string{"admin"}},
		}}.Handle,
	})
}

func serve(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body struct {
		Error errorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestErrorKindsMapToStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", apperr.Validation("from must be before to"), http.StatusBadRequest, "validation"},
		{"conflict sentinel", domainreservations.ErrConflict, http.StatusConflict, "conflict"},
		{"not found sentinel", domainreservations.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unauthorized", apperr.Unauthorized("auth required"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperr.Forbidden("admin only"), http.StatusForbidden, "forbidden"},
		{"infrastructure", errors.New("dial tcp: refused"), http.StatusInternalServerError, "infrastructure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qs := &stubQueries{err: tc.err}
			rec := serve(t, newTestRouter(&stubCommands{}, qs), httptest.NewRequest(http.MethodGet, "/api/v1/reservations/r1", nil))

			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.kind, body.Kind)
			if tc.kind == "infrastructure" {
				assert.Equal(t, "internal error", body.Message)
			}
		})
	}
}

func TestQuoteRouteForwardsQueryParams(t *testing.T) {
	qs := &stubQueries{result: dto.PriceQuote{Total: 330000}}
	rec := serve(t, newTestRouter(&stubCommands{}, qs),
		httptest.NewRequest(http.MethodGet, "/api/v1/pricing/quote?from=2024-03-01&to=2024-03-02", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pricingapp.QuoteQuery{From: "2024-03-01", To: "2024-03-02"}, qs.got)
	assert.Contains(t, rec.Body.String(), `"total":330000`)
}

func TestDayRouteUsesPathDate(t *testing.T) {
	qs := &stubQueries{result: dto.DayInfo{}}
	rec := serve(t, newTestRouter(&stubCommands{}, qs), httptest.NewRequest(http.MethodGet, "/api/v1/pricing/days/2024-05-01", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pricingapp.DayInfoQuery{Date: "2024-05-01"}, qs.got)
}

func TestCreateReservationCarriesIdempotencyKey(t *testing.T) {
	cmds := &stubCommands{result: &dto.Reservation{ID: "r1", Status: "pending"}}
	payload := `{"cabin_id":"c1","from":"2024-03-01","to":"2024-03-04","guests":2,"guest":{"name":" Ana ","email":"ana@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "k-1")

	rec := serve(t, newTestRouter(cmds, &stubQueries{}), req)

	require.Equal(t, http.StatusCreated, rec.Code)
	cmd, ok := cmds.got.(reservationsapp.CreateReservationCommand)
	require.True(t, ok)
	assert.Equal(t, "k-1", cmd.IdempotencyKey())
	assert.Equal(t, "Ana", cmd.GuestName)
	assert.Equal(t, 2, cmd.Guests)
	assert.Equal(t, "c1", cmd.CabinID)
}

func TestCreateReservationRejectsMalformedBody(t *testing.T) {
	cmds := &stubCommands{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(t, newTestRouter(cmds, &stubQueries{}), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, cmds.got)
}

func TestBearerTokenAttachesPrincipal(t *testing.T) {
	cmds := &stubCommands{result: &dto.Reservation{ID: "r1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/r1/confirm", nil)
	req.Header.Set("Authorization", "Bearer admin-token")

	rec := serve(t, newTestRouter(cmds, &stubQueries{}), req)

	require.Equal(t, http.StatusOK, rec.Code)
	p, ok := policies.PrincipalFromContext(cmds.ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", p.ID)
}

func TestUnknownTokenStaysAnonymous(t *testing.T) {
	cmds := &stubCommands{result: &dto.Reservation{ID: "r1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/r1/confirm", nil)
	req.Header.Set("Authorization", "Bearer forged")

	serve(t, newTestRouter(cmds, &stubQueries{}), req)

	_, ok := policies.PrincipalFromContext(cmds.ctx)
	assert.False(t, ok)
}

func TestMeRequiresPrincipal(t *testing.T) {
	router := newTestRouter(&stubCommands{}, &stubQueries{})

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "bearer admin-token")
	rec = serve(t, router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestDeleteReservationReturnsNoContent(t *testing.T) {
	cmds := &stubCommands{result: &dto.Reservation{ID: "r1"}}
	rec := serve(t, newTestRouter(cmds, &stubQueries{}), httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/r1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, reservationsapp.DeleteReservationCommand{ReservationID: "r1"}, cmds.got)
}

func TestUploadImageReadsMultipartFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image"; filename="porch.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	var body []byte
	cmds := &stubCommands{result: &dto.Cabin{ID: "c1"}}
	router := NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Cabins: CabinHandler{Commands: commandReader{stub: cmds, read: &body}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cabins/c1/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := serve(t, router, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	cmd, ok := cmds.got.(cabinsapp.UploadCabinImageCommand)
	require.True(t, ok)
	assert.Equal(t, "c1", cmd.CabinID)
	assert.Equal(t, "image/jpeg", cmd.ContentType)
	assert.EqualValues(t, len("jpeg-bytes"), cmd.Size)
	assert.Equal(t, "jpeg-bytes", string(body))
}

func TestUploadImageWithoutFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cabins/c1/images", nil)
	rec := serve(t, newTestRouter(&stubCommands{}, &stubQueries{}), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// commandReader drains upload bodies while the request is still open.
type commandReader struct {
	stub *stubCommands
	read *[]byte
}

func (c commandReader) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	if up, ok := cmd.(cabinsapp.UploadCabinImageCommand); ok && up.Body != nil {
		data, err := io.ReadAll(up.Body)
		if err != nil {
			return nil, err
		}
		*c.read = data
	}
	return c.stub.Dispatch(ctx, cmd)
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", extractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", extractBearerToken("bearer  abc "))
	assert.Empty(t, extractBearerToken("Basic abc"))
	assert.Empty(t, extractBearerToken("Bear"))
}

func TestLivez(t *testing.T) {
	rec := serve(t, newTestRouter(&stubCommands{}, &stubQueries{}), httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
