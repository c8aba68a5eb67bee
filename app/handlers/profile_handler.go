package handlers

import (
	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/middleware"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/gofiber/fiber/v3"
)

type ProfileHandlerInterface interface {
	EnsureProfile(c fiber.Ctx) error
	GetMyProfile(c fiber.Ctx) error
	UpdateMyProfile(c fiber.Ctx) error
	ListBrokers(c fiber.Ctx) error
	ListUsers(c fiber.Ctx) error
	GetUser(c fiber.Ctx) error
	UpdateUser(c fiber.Ctx) error
}

type ProfileHandler struct {
	baseHandler
	flow businessflow.ProfileFlow
}

func NewProfileHandler(flow businessflow.ProfileFlow) *ProfileHandler {
	return &ProfileHandler{baseHandler: newBaseHandler(), flow: flow}
}

// EnsureProfile provisions the caller's profile on first login and returns it
// @Summary Ensure profile
// @Description Create the caller's profile if it does not exist yet. New users start as brokers without a broker code.
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Profile ready"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/profile [post]
func (h *ProfileHandler) EnsureProfile(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/profile")
	defer cancel()

	res, err := h.flow.GetMyProfile(ctx, identity)
	if err != nil {
		return h.flowError(c, err, "Failed to provision profile")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Profile ready", res)
}

// GetMyProfile returns the authenticated user's profile
// @Summary Get profile
// @Description Retrieve the authenticated user's profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Profile retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetMyProfile(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/profile")
	defer cancel()

	res, err := h.flow.GetMyProfile(ctx, identity)
	if err != nil {
		return h.flowError(c, err, "Failed to get profile")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved successfully", res)
}

// UpdateMyProfile changes the authenticated user's display name
// @Summary Update profile
// @Description Update the authenticated user's full name. Role and broker code can only be changed by an admin.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateMyProfileRequest true "Profile changes"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Profile updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/profile [put]
func (h *ProfileHandler) UpdateMyProfile(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	var req dto.UpdateMyProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.invalidBody(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/profile")
	defer cancel()

	res, err := h.flow.UpdateMyProfile(ctx, identity, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to update profile")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Profile updated successfully", res)
}

// ListBrokers returns brokers that carry a broker code
// @Summary List brokers
// @Description List broker profiles with an assigned broker code, ordered by code (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.BrokerOption} "Brokers retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/brokers [get]
func (h *ProfileHandler) ListBrokers(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/brokers")
	defer cancel()

	res, err := h.flow.ListBrokers(ctx, identity)
	if err != nil {
		return h.flowError(c, err, "Failed to list brokers")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Brokers retrieved successfully", res)
}

// ListUsers returns a page of profiles
// @Summary List users
// @Description List user profiles, optionally filtered by role (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)" default(20)
// @Param role query string false "Role filter" Enums(admin, broker)
// @Success 200 {object} dto.APIResponse{data=dto.ListProfilesResponse} "Users retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/users [get]
func (h *ProfileHandler) ListUsers(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	var req dto.ListProfilesRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.invalidQuery(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/users")
	defer cancel()

	res, err := h.flow.ListProfiles(ctx, identity, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to list users")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Users retrieved successfully", res)
}

// GetUser returns one profile
// @Summary Get user
// @Description Retrieve a user profile by ID (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "User retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid ID"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 404 {object} dto.APIResponse "Profile not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/users/{id} [get]
func (h *ProfileHandler) GetUser(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}
	id, ok := pathID(c)
	if !ok {
		return h.invalidID(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/users/:id")
	defer cancel()

	res, err := h.flow.GetProfile(ctx, identity, id)
	if err != nil {
		return h.flowError(c, err, "Failed to get user")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "User retrieved successfully", res)
}

// UpdateUser changes a profile's role, broker code or name
// @Summary Update user
// @Description Change a user's role, broker code or full name (admin only). An empty broker_code clears it.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Param request body dto.AdminUpdateProfileRequest true "Profile changes"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "User updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 404 {object} dto.APIResponse "Profile not found"
// @Failure 409 {object} dto.APIResponse "Broker code already assigned"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/users/{id} [put]
func (h *ProfileHandler) UpdateUser(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}
	id, ok := pathID(c)
	if !ok {
		return h.invalidID(c)
	}

	var req dto.AdminUpdateProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.invalidBody(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/users/:id")
	defer cancel()

	res, err := h.flow.UpdateProfile(ctx, identity, id, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to update user")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "User updated successfully", res)
}
