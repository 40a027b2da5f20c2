package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"mailguard/internal/domain"
	"mailguard/internal/platform/metrics"
	"mailguard/internal/platform/middleware"
	"mailguard/internal/settings"
	"mailguard/internal/settings/store"
	"mailguard/pkg/testutil"
)

const testAdminToken = "admin-secret"

type tokenSet map[string]bool

func (t tokenSet) IsTokenValid(_ context.Context, token string) bool { return t[token] }

type HandlerSuite struct {
	suite.Suite
	router chi.Router
	store  *store.InMemoryStore
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.store = store.NewInMemory()
	svc := settings.New(s.store, tokenSet{"GOODTOKEN123": true})
	h := New(svc, testAdminToken, slog.New(slog.DiscardHandler), metrics.New(prometheus.NewRegistry()))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(req *http.Request) *testutil.Response {
	req.Header.Set(middleware.HeaderAdminToken, testAdminToken)
	return testutil.Do(s.T(), s.router, req)
}

func (s *HandlerSuite) TestRequiresAdminToken() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/admin/settings")
	resp := testutil.Do(s.T(), s.router, req)
	resp.AssertError(http.StatusUnauthorized, "unauthorized")

	req = testutil.NewRequest(s.T(), http.MethodGet, "/admin/settings")
	req.Header.Set(middleware.HeaderAdminToken, "wrong")
	testutil.Do(s.T(), s.router, req).AssertError(http.StatusUnauthorized, "unauthorized")
}

func (s *HandlerSuite) TestGetReturnsDefaults() {
	resp := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/admin/settings"))
	resp.AssertStatus(http.StatusOK)

	body := testutil.Decode[SettingsResponse](s.T(), resp)
	s.False(body.Enabled)
	s.False(body.TokenConfigured)
	s.Empty(body.APIToken)
	s.NotEmpty(body.DisposableMessage)
}

func (s *HandlerSuite) TestUpdateEnablesWithValidToken() {
	resp := s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/settings", map[string]any{
		"api_token": "GOODTOKEN123",
		"enabled":   true,
	}))
	resp.AssertStatus(http.StatusOK)

	body := testutil.Decode[SettingsResponse](s.T(), resp)
	s.True(body.Enabled)
	s.True(body.TokenConfigured)
	s.Equal("********N123", body.APIToken)
	s.NotContains(resp.Body, "GOODTOKEN123")
}

func (s *HandlerSuite) TestUpdateRefusesInvalidToken() {
	resp := s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/settings", map[string]any{
		"api_token": "BAD",
		"enabled":   true,
	}))
	resp.AssertError(http.StatusBadRequest, "validation_error")
	s.Contains(resp.Body, "api token is invalid")
}

func (s *HandlerSuite) TestUpdateRejectsUnknownFields() {
	resp := s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/settings", map[string]any{
		"surprise": 1,
	}))
	resp.AssertError(http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestUpdateRequiresJSON() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPut, "/admin/settings", `{"enabled":false}`)
	req.Header.Set("Content-Type", "text/plain")
	s.do(req).AssertStatus(http.StatusUnsupportedMediaType)
}

func (s *HandlerSuite) TestValidateToken() {
	resp := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/settings/validate-token", map[string]any{
		"api_token": "GOODTOKEN123",
	}))
	resp.AssertStatus(http.StatusOK)
	s.True(testutil.Decode[ValidateTokenResponse](s.T(), resp).Valid)

	resp = s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/settings/validate-token", map[string]any{
		"api_token": "nope",
	}))
	resp.AssertStatus(http.StatusOK)
	s.False(testutil.Decode[ValidateTokenResponse](s.T(), resp).Valid)
}

type panickingSettings struct{}

func (panickingSettings) Current(context.Context) (domain.Configuration, error) {
	panic("settings exploded")
}

func (panickingSettings) Update(context.Context, *settings.UpdateRequest) (domain.Configuration, error) {
	panic("settings exploded")
}

func (panickingSettings) ValidateToken(context.Context, string) (bool, error) {
	panic("settings exploded")
}

func TestPanicLogCarriesRequestID(t *testing.T) {
	var logs bytes.Buffer
	router := chi.NewRouter()
	New(panickingSettings{}, testAdminToken, slog.New(slog.NewJSONHandler(&logs, nil)), nil).Register(router)

	req := testutil.NewRequest(t, http.MethodGet, "/admin/settings")
	req.Header.Set(middleware.HeaderAdminToken, testAdminToken)
	req.Header.Set(middleware.HeaderRequestID, "req-7")
	resp := testutil.Do(t, router, req)

	resp.AssertError(http.StatusInternalServerError, "internal_error")
	assert.Contains(t, logs.String(), `"request_id":"req-7"`)
	assert.Equal(t, "req-7", resp.Header.Get(middleware.HeaderRequestID))
}
