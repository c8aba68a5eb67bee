package handlers

import (
	"maps"
	"slices"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/services"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
)

type CurrencyHandlerInterface interface {
	ListCurrencies(c fiber.Ctx) error
	ConvertCurrency(c fiber.Ctx) error
}

type CurrencyHandler struct {
	baseHandler
	rates services.ExchangeRateClient
}

func NewCurrencyHandler(rates services.ExchangeRateClient) *CurrencyHandler {
	return &CurrencyHandler{baseHandler: newBaseHandler(), rates: rates}
}

// ListCurrencies returns the currencies the rate service can convert
// @Summary List currencies
// @Description List supported currency codes and names, ordered by code
// @Tags Currencies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CurrencyItem} "Currencies retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 502 {object} dto.APIResponse "Exchange rate service unavailable"
// @Router /api/v1/currencies [get]
func (h *CurrencyHandler) ListCurrencies(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/currencies")
	defer cancel()

	currencies, err := h.rates.Currencies(ctx)
	if err != nil {
		return h.flowError(c, err, "Failed to list currencies")
	}

	items := make([]dto.CurrencyItem, 0, len(currencies))
	for _, code := range slices.Sorted(maps.Keys(currencies)) {
		items = append(items, dto.CurrencyItem{Code: code, Name: currencies[code]})
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Currencies retrieved successfully", items)
}

// ConvertCurrency converts an amount to EUR at the latest rate
// @Summary Convert to EUR
// @Description Convert an amount in the given currency to EUR, rounded to cents
// @Tags Currencies
// @Produce json
// @Security BearerAuth
// @Param amount query string true "Amount in local currency"
// @Param currency query string true "ISO 4217 currency code"
// @Success 200 {object} dto.APIResponse{data=dto.ConvertCurrencyResponse} "Conversion successful"
// @Failure 400 {object} dto.APIResponse "Validation error or unsupported currency"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 502 {object} dto.APIResponse "Exchange rate service unavailable"
// @Router /api/v1/currencies/convert [get]
func (h *CurrencyHandler) ConvertCurrency(c fiber.Ctx) error {
	var req dto.ConvertCurrencyRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.invalidQuery(c, err)
	}
	req.Currency = utils.NormalizeCurrency(req.Currency)
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Amount must be a non-negative number", businessflow.CodeValidation, nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/currencies/convert")
	defer cancel()

	conv, err := h.rates.ConvertToEUR(ctx, amount, req.Currency)
	if err != nil {
		return h.flowError(c, err, "Failed to convert currency")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Conversion successful", dto.ConvertCurrencyResponse{
		Currency:     req.Currency,
		Amount:       amount,
		ValueEuro:    conv.ValueEuro,
		ExchangeRate: conv.ExchangeRate,
		RateDate:     conv.RateDate,
	})
}
