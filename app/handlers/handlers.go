// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/middleware"
	"github.com/amirphl/cargo-certificates/app/services"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// baseHandler carries the response helpers shared by every handler
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: validator.New()}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validationFailed renders validator errors as a 400
func (h *baseHandler) validationFailed(c fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidation, nil)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, getValidationErrorMessage(fe))
	}
	return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidation, messages)
}

func (h *baseHandler) invalidBody(c fiber.Ctx, err error) error {
	return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
}

func (h *baseHandler) invalidQuery(c fiber.Ctx, err error) error {
	return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
}

func (h *baseHandler) invalidID(c fiber.Ctx) error {
	return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ID format", "INVALID_ID", nil)
}

func (h *baseHandler) notAuthenticated(c fiber.Ctx) error {
	return h.ErrorResponse(c, fiber.StatusUnauthorized, "Not authenticated", businessflow.CodeNotAuthenticated, nil)
}

// pathID parses the :id route parameter
func pathID(c fiber.Ctx) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Params("id"))
	return id, err == nil
}

// flowError maps a business flow failure onto the API taxonomy.
// Wrapped internal errors are logged, never returned to the client.
func (h *baseHandler) flowError(c fiber.Ctx, err error, fallbackMessage string) error {
	var apiErr *services.CurrencyAPIError
	if errors.As(err, &apiErr) {
		middleware.RecordExchangeRateFailure(apiErr.Cause)
		if apiErr.Cause == services.CauseNotSupported {
			return h.ErrorResponse(c, fiber.StatusBadRequest, apiErr.Message, businessflow.CodeCurrencyNotSupported, fiber.Map{"currency": apiErr.Currency})
		}
		log.Printf("%s %s: exchange rate lookup failed: %v", c.Method(), c.Path(), apiErr.Err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, apiErr.Message, businessflow.CodeCurrencyAPIUnavailable, nil)
	}

	be, isBusiness := businessflow.AsBusinessError(err)
	message := func(def string) string {
		if isBusiness && be.Message != "" {
			return be.Message
		}
		return def
	}
	code := func(def string) string {
		if isBusiness && be.Code != "" {
			return be.Code
		}
		return def
	}

	switch {
	case businessflow.IsNotAuthenticated(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, message("Not authenticated"), code(businessflow.CodeNotAuthenticated), nil)
	case businessflow.IsUnauthorized(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, message("Unauthorized"), code(businessflow.CodeUnauthorized), nil)
	case businessflow.IsNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, message("Resource not found"), code("NOT_FOUND"), nil)
	case businessflow.IsValidation(err):
		var limitErr *businessflow.ValueLimitError
		if errors.As(err, &limitErr) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, limitErr.Message, limitErr.Code, fiber.Map{
				"attempted": limitErr.Attempted,
				"maximum":   limitErr.Maximum,
			})
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, message("Validation failed"), code(businessflow.CodeValidation), nil)
	case businessflow.IsConflict(err):
		return h.ErrorResponse(c, fiber.StatusConflict, message("Conflict"), code("CONFLICT"), nil)
	}

	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	if isBusiness {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, message(fallbackMessage), code("INTERNAL_ERROR"), nil)
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, "INTERNAL_ERROR", nil)
}

func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx, cancel
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		if err.Kind().String() == "string" {
			return err.Field() + " must be at most " + err.Param() + " characters"
		}
		return err.Field() + " must be at most " + err.Param()
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "uuid", "uuid4":
		return err.Field() + " must be a valid UUID"
	case "datetime":
		return err.Field() + " must be a date in YYYY-MM-DD format"
	case "alpha":
		return err.Field() + " must contain only letters"
	case "numeric":
		return err.Field() + " must be a number"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
