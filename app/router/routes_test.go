package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/handlers"
	"github.com/amirphl/cargo-certificates/app/middleware"
	"github.com/amirphl/cargo-certificates/app/services"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/amirphl/cargo-certificates/config"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret-key-32-characters!"

type stubProfileFlow struct {
	businessflow.ProfileFlow
	admins map[uuid.UUID]bool
}

func (s *stubProfileFlow) EnsureProfile(ctx context.Context, id uuid.UUID) (*businessflow.Identity, error) {
	if s.admins[id] {
		return &businessflow.Identity{ProfileID: id, Role: models.RoleAdmin}, nil
	}
	return &businessflow.Identity{ProfileID: id, Role: models.RoleBroker}, nil
}

type stubRates struct {
	services.ExchangeRateClient
}

func (stubRates) Currencies(ctx context.Context) (map[string]string, error) {
	return map[string]string{"EUR": "Euro"}, nil
}

func (stubRates) ConvertToEUR(ctx context.Context, amount decimal.Decimal, currency string) (*services.Conversion, error) {
	return &services.Conversion{ValueEuro: amount, ExchangeRate: decimal.NewFromInt(1), RateDate: "2026-06-12"}, nil
}

func testConfig() *config.ProductionConfig {
	return &config.ProductionConfig{
		Server: config.ServerConfig{
			BodyLimit:       1 << 20,
			ShutdownTimeout: time.Second,
		},
		Security: config.SecurityConfig{
			AllowedOrigins:  []string{"*"},
			AllowedMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:  []string{"Authorization", "Content-Type"},
			GlobalRateLimit: 1000,
			RateLimitWindow: time.Minute,
			XFrameOptions:   "DENY",
			ReferrerPolicy:  "no-referrer",
			CSPPolicy:       "default-src 'self'",
		},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Deployment: config.DeploymentConfig{Environment: "test", Version: "1.2.3"},
	}
}

func newTestRouter(t *testing.T, admins ...uuid.UUID) (*fiber.App, services.TokenService) {
	t.Helper()
	tokens, err := services.NewTokenService(15*time.Minute, "test-issuer", "authenticated", false, "", "", testSecret)
	require.NoError(t, err)

	flow := &stubProfileFlow{admins: map[uuid.UUID]bool{}}
	for _, id := range admins {
		flow.admins[id] = true
	}

	r := NewFiberRouter(testConfig(), middleware.NewAuthMiddleware(tokens, flow), Handlers{
		Profile:     handlers.NewProfileHandler(flow),
		Contract:    handlers.NewContractHandler(nil),
		Certificate: handlers.NewCertificateHandler(nil),
		PDF:         handlers.NewCertificatePDFHandler(nil),
		Export:      handlers.NewCertificateExportHandler(nil),
		Currency:    handlers.NewCurrencyHandler(stubRates{}),
	})
	r.SetupRoutes()
	return r.GetApp(), tokens
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   dto.ErrorDetail `json:"error"`
}

func call(t *testing.T, app *fiber.App, method, path, token string) (int, envelope, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	_ = json.Unmarshal(body, &env)
	return resp.StatusCode, env, string(body)
}

func TestRouter_Health(t *testing.T) {
	app, _ := newTestRouter(t)

	status, env, _ := call(t, app, "GET", "/api/v1/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)
}

func TestRouter_NotFound(t *testing.T) {
	app, _ := newTestRouter(t)

	status, env, _ := call(t, app, "GET", "/api/v1/nothing-here", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/profile",
		"/api/v1/contracts",
		"/api/v1/certificates",
		"/api/v1/currencies",
		"/api/v1/admin/users",
		"/api/pdf/" + uuid.NewString(),
	} {
		status, env, _ := call(t, app, "GET", path, "")
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Equal(t, "MISSING_AUTHORIZATION_HEADER", env.Error.Code, path)
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	adminID := uuid.New()
	app, tokens := newTestRouter(t, adminID)

	brokerToken, err := tokens.GenerateAccessToken(uuid.New(), "")
	require.NoError(t, err)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/v1/admin/users"},
		{"GET", "/api/v1/brokers"},
		{"POST", "/api/v1/contracts"},
		{"DELETE", "/api/v1/contracts/" + uuid.NewString()},
		{"GET", "/api/v1/admin/certificates/export"},
	} {
		status, env, _ := call(t, app, tc.method, tc.path, brokerToken)
		assert.Equal(t, fiber.StatusForbidden, status, tc.path)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code, tc.path)
	}
}

func TestRouter_AuthenticatedRequestReachesHandler(t *testing.T) {
	app, tokens := newTestRouter(t)

	token, err := tokens.GenerateAccessToken(uuid.New(), "broker@example.com")
	require.NoError(t, err)

	status, env, _ := call(t, app, "GET", "/api/v1/currencies", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)
}

func TestRouter_Metrics(t *testing.T) {
	app, _ := newTestRouter(t)

	call(t, app, "GET", "/api/v1/health", "")
	status, _, body := call(t, app, "GET", "/metrics", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "http_requests_total")
}

func TestRouter_SwaggerInDevelopment(t *testing.T) {
	app, _ := newTestRouter(t)

	status, _, body := call(t, app, "GET", "/api/v1/swagger.json", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "/api/v1/certificates")
}
