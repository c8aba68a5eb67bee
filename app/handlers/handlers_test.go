package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/middleware"
	"github.com/amirphl/cargo-certificates/app/services"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminIdentity  = &businessflow.Identity{ProfileID: uuid.New(), Role: models.RoleAdmin}
	brokerCode     = "BRK001"
	brokerIdentity = &businessflow.Identity{ProfileID: uuid.New(), Role: models.RoleBroker, BrokerCode: &brokerCode}
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// newApp builds an app whose requests run as identity (anonymous when nil)
func newApp(identity *businessflow.Identity) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		if identity != nil {
			c.Locals(middleware.IdentityLocalsKey, identity)
		}
		return c.Next()
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func TestFlowError_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:   "not authenticated",
			err:    businessflow.NewBusinessError(businessflow.CodeNotAuthenticated, "Not authenticated", businessflow.ErrNotAuthenticated),
			status: fiber.StatusUnauthorized,
			code:   businessflow.CodeNotAuthenticated,
		},
		{
			name:    "unauthorized",
			err:     businessflow.Decide(brokerIdentity, businessflow.ActionCreateContract, nil).Err(),
			status:  fiber.StatusForbidden,
			code:    businessflow.CodeUnauthorized,
			message: "Unauthorized: admin role required",
		},
		{
			name:    "not found",
			err:     businessflow.NewBusinessError(businessflow.CodeCertificateNotFound, "Certificate not found", businessflow.ErrCertificateNotFound),
			status:  fiber.StatusNotFound,
			code:    businessflow.CodeCertificateNotFound,
			message: "Certificate not found",
		},
		{
			name:    "validation",
			err:     businessflow.NewValidationError("Value must be greater than zero"),
			status:  fiber.StatusBadRequest,
			code:    businessflow.CodeValidation,
			message: "Value must be greater than zero",
		},
		{
			name:    "conflict",
			err:     businessflow.NewBusinessError(businessflow.CodeContractInUse, "Contract has certificates and cannot be deleted", businessflow.ErrContractInUse),
			status:  fiber.StatusConflict,
			code:    businessflow.CodeContractInUse,
			message: "Contract has certificates and cannot be deleted",
		},
		{
			name:    "unsupported currency",
			err:     &services.CurrencyAPIError{Currency: "XYZ", Cause: services.CauseNotSupported, Message: "Currency XYZ is not supported"},
			status:  fiber.StatusBadRequest,
			code:    businessflow.CodeCurrencyNotSupported,
			message: "Currency XYZ is not supported",
		},
		{
			name:    "rate service down",
			err:     &services.CurrencyAPIError{Currency: "USD", Cause: services.CauseUnavailable, Message: "Exchange rate service unavailable", Err: errors.New("dial tcp: timeout")},
			status:  fiber.StatusBadGateway,
			code:    businessflow.CodeCurrencyAPIUnavailable,
			message: "Exchange rate service unavailable",
		},
		{
			name:    "persistence failure hides the cause",
			err:     businessflow.NewBusinessError(businessflow.CodePersistence, "Failed to save certificate", errors.New("pq: relation does not exist")),
			status:  fiber.StatusInternalServerError,
			code:    businessflow.CodePersistence,
			message: "Failed to save certificate",
		},
		{
			name:    "unknown error",
			err:     errors.New("boom"),
			status:  fiber.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "fallback message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newBaseHandler()
			app := fiber.New()
			app.Get("/", func(c fiber.Ctx) error { return h.flowError(c, tt.err, "fallback message") })

			resp, env := do(t, app, "GET", "/", "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Message)
			}
			assert.NotContains(t, env.Message, "pq:")
			assert.NotContains(t, env.Message, "dial tcp")
		})
	}
}

func TestFlowError_ValueLimitDetails(t *testing.T) {
	contract := &models.Contract{
		SumInsured:             decimal.NewFromInt(1000),
		AdditionalSIPercentage: decimal.NewFromInt(10),
	}
	limitErr := businessflow.ValidateValueLimit(contract, decimal.RequireFromString("1100.01"))
	require.Error(t, limitErr)

	h := newBaseHandler()
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error { return h.flowError(c, limitErr, "fallback") })

	resp, env := do(t, app, "GET", "/", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, businessflow.CodeValidation, env.Error.Code)

	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, "1100.01", details["attempted"])
	assert.Equal(t, "1100.00", details["maximum"])
}

func TestGetValidationErrorMessage(t *testing.T) {
	h := newBaseHandler()
	req := dto.CreateCertificateRequest{
		ContractID:  "not-a-uuid",
		LoadingDate: "01/03/2026",
		Currency:    "us1",
	}
	err := h.validator.Struct(&req)
	require.Error(t, err)

	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error { return h.validationFailed(c, err) })
	resp, env := do(t, app, "GET", "/", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var messages []string
	require.NoError(t, json.Unmarshal(env.Error.Details, &messages))
	assert.Contains(t, messages, "ContractID must be a valid UUID")
	assert.Contains(t, messages, "LoadingDate must be a date in YYYY-MM-DD format")
	assert.Contains(t, messages, "InsuredName is required")
	assert.Contains(t, messages, "Currency must contain only letters")
}

func TestHandlers_RequireIdentity(t *testing.T) {
	app := newApp(nil)
	ch := NewContractHandler(&stubContractFlow{})
	app.Get("/api/v1/contracts", ch.ListContracts)

	resp, env := do(t, app, "GET", "/api/v1/contracts", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, businessflow.CodeNotAuthenticated, env.Error.Code)
}

type stubContractFlow struct {
	businessflow.ContractFlow
	listed *dto.ListContractsRequest
}

func (s *stubContractFlow) ListContracts(ctx context.Context, identity *businessflow.Identity, req *dto.ListContractsRequest) (*dto.ListContractsResponse, error) {
	s.listed = req
	return &dto.ListContractsResponse{Items: []dto.ContractResponse{}}, nil
}

func (s *stubContractFlow) CreateContract(ctx context.Context, identity *businessflow.Identity, req *dto.CreateContractRequest) (*dto.ContractResponse, error) {
	if err := businessflow.Decide(identity, businessflow.ActionCreateContract, nil).Err(); err != nil {
		return nil, err
	}
	return &dto.ContractResponse{ID: uuid.NewString(), ContractNumber: req.ContractNumber, BrokerCode: req.BrokerCode}, nil
}

func (s *stubContractFlow) DeleteContract(ctx context.Context, identity *businessflow.Identity, id uuid.UUID) error {
	return businessflow.NewBusinessError(businessflow.CodeContractInUse, "Contract has certificates and cannot be deleted", businessflow.ErrContractInUse)
}

func TestContractHandler(t *testing.T) {
	flow := &stubContractFlow{}
	h := NewContractHandler(flow)

	body := `{"contract_number":"C-1","insured_name":"ACME","coverage_type":"All risks","start_date":"2026-01-01","end_date":"2026-12-31","broker_code":"BRK001","sum_insured":"100000","additional_si_percentage":"10"}`

	t.Run("admin creates", func(t *testing.T) {
		app := newApp(adminIdentity)
		app.Post("/api/v1/contracts", h.CreateContract)
		resp, env := do(t, app, "POST", "/api/v1/contracts", body)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.True(t, env.Success)
	})

	t.Run("broker is forbidden", func(t *testing.T) {
		app := newApp(brokerIdentity)
		app.Post("/api/v1/contracts", h.CreateContract)
		resp, env := do(t, app, "POST", "/api/v1/contracts", body)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, businessflow.CodeUnauthorized, env.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		app := newApp(adminIdentity)
		app.Post("/api/v1/contracts", h.CreateContract)
		resp, env := do(t, app, "POST", "/api/v1/contracts", `{"contract_number":`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	})

	t.Run("list binds pagination", func(t *testing.T) {
		app := newApp(adminIdentity)
		app.Get("/api/v1/contracts", h.ListContracts)
		resp, _ := do(t, app, "GET", "/api/v1/contracts?page=2&page_size=5&broker_code=BRK002", "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, flow.listed)
		assert.Equal(t, 2, flow.listed.Page)
		assert.Equal(t, 5, flow.listed.PageSize)
		require.NotNil(t, flow.listed.BrokerCode)
		assert.Equal(t, "BRK002", *flow.listed.BrokerCode)
	})

	t.Run("page size over the maximum", func(t *testing.T) {
		app := newApp(adminIdentity)
		app.Get("/api/v1/contracts", h.ListContracts)
		resp, env := do(t, app, "GET", "/api/v1/contracts?page_size=500", "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, businessflow.CodeValidation, env.Error.Code)
	})

	t.Run("delete in use", func(t *testing.T) {
		app := newApp(adminIdentity)
		app.Delete("/api/v1/contracts/:id", h.DeleteContract)
		resp, env := do(t, app, "DELETE", "/api/v1/contracts/"+uuid.NewString(), "")
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, businessflow.CodeContractInUse, env.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		app := newApp(adminIdentity)
		app.Delete("/api/v1/contracts/:id", h.DeleteContract)
		resp, env := do(t, app, "DELETE", "/api/v1/contracts/42", "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", env.Error.Code)
	})
}
