// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/services"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/gofiber/fiber/v3"
)

// Locals keys set by the authentication middleware
const (
	IdentityLocalsKey    = "identity"
	TokenClaimsLocalsKey = "token_claims"
)

// AuthMiddleware validates bearer tokens and resolves the caller's profile
type AuthMiddleware struct {
	tokenService services.TokenService
	profileFlow  businessflow.ProfileFlow
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService, profileFlow businessflow.ProfileFlow) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		profileFlow:  profileFlow,
	}
}

// Authenticate validates the bearer token and stores the caller identity.
// A subject seen for the first time is provisioned as a broker without a broker code.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Access token has expired", "TOKEN_EXPIRED")
			case errors.Is(err, services.ErrTokenInvalid):
				return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
			default:
				return unauthorized(c, "Token validation failed", "TOKEN_VALIDATION_FAILED")
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
		defer cancel()

		identity, err := m.profileFlow.EnsureProfile(ctx, claims.Subject)
		if err != nil {
			if businessflow.IsNotAuthenticated(err) {
				return unauthorized(c, "Not authenticated", businessflow.CodeNotAuthenticated)
			}
			log.Printf("auth: resolve profile %s: %v", claims.Subject, err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
				Success: false,
				Message: "Failed to resolve user profile",
				Error:   dto.ErrorDetail{Code: "PROFILE_RESOLUTION_FAILED"},
			})
		}

		c.Locals(IdentityLocalsKey, identity)
		c.Locals(TokenClaimsLocalsKey, claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// RequireAdmin rejects authenticated callers that are not admins
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		identity, ok := GetIdentityFromContext(c)
		if !ok {
			return unauthorized(c, "Authentication required", "AUTHENTICATION_REQUIRED")
		}
		if !identity.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Unauthorized: admin role required",
				Error:   dto.ErrorDetail{Code: businessflow.CodeUnauthorized},
			})
		}
		return c.Next()
	}
}

// GetIdentityFromContext extracts the caller identity set by Authenticate
func GetIdentityFromContext(c fiber.Ctx) (*businessflow.Identity, bool) {
	identity, ok := c.Locals(IdentityLocalsKey).(*businessflow.Identity)
	return identity, ok && identity != nil
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals(TokenClaimsLocalsKey).(*services.TokenClaims)
	return claims, ok
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}
