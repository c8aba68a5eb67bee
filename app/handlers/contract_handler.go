package handlers

import (
	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/middleware"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/gofiber/fiber/v3"
)

type ContractHandlerInterface interface {
	CreateContract(c fiber.Ctx) error
	ListContracts(c fiber.Ctx) error
	GetContract(c fiber.Ctx) error
	UpdateContract(c fiber.Ctx) error
	DeleteContract(c fiber.Ctx) error
}

type ContractHandler struct {
	baseHandler
	flow businessflow.ContractFlow
}

func NewContractHandler(flow businessflow.ContractFlow) *ContractHandler {
	return &ContractHandler{baseHandler: newBaseHandler(), flow: flow}
}

// CreateContract registers an insurance contract
// @Summary Create contract
// @Description Create an insurance contract (admin only). Contract numbers are unique.
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateContractRequest true "Contract"
// @Success 201 {object} dto.APIResponse{data=dto.ContractResponse} "Contract created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 409 {object} dto.APIResponse "Contract number already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contracts [post]
func (h *ContractHandler) CreateContract(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	var req dto.CreateContractRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.invalidBody(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts")
	defer cancel()

	res, err := h.flow.CreateContract(ctx, identity, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to create contract")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Contract created successfully", res)
}

// ListContracts returns the contracts visible to the caller
// @Summary List contracts
// @Description Admins see every contract and may filter by broker code; brokers see their own contracts only.
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)" default(20)
// @Param broker_code query string false "Broker code filter (admin only)"
// @Param active_on query string false "Only contracts valid on this date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.ListContractsResponse} "Contracts retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contracts [get]
func (h *ContractHandler) ListContracts(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	var req dto.ListContractsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.invalidQuery(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts")
	defer cancel()

	res, err := h.flow.ListContracts(ctx, identity, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to list contracts")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contracts retrieved successfully", res)
}

// GetContract returns one contract
// @Summary Get contract
// @Description Retrieve a contract by ID. Brokers may only read contracts carrying their broker code.
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract ID"
// @Success 200 {object} dto.APIResponse{data=dto.ContractResponse} "Contract retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid ID"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contracts/{id} [get]
func (h *ContractHandler) GetContract(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}
	id, ok := pathID(c)
	if !ok {
		return h.invalidID(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id")
	defer cancel()

	res, err := h.flow.GetContract(ctx, identity, id)
	if err != nil {
		return h.flowError(c, err, "Failed to get contract")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contract retrieved successfully", res)
}

// UpdateContract applies a partial update to a contract
// @Summary Update contract
// @Description Update contract fields (admin only). Omitted fields keep their current value.
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract ID"
// @Param request body dto.UpdateContractRequest true "Contract changes"
// @Success 200 {object} dto.APIResponse{data=dto.ContractResponse} "Contract updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Failure 409 {object} dto.APIResponse "Contract number already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contracts/{id} [put]
func (h *ContractHandler) UpdateContract(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}
	id, ok := pathID(c)
	if !ok {
		return h.invalidID(c)
	}

	var req dto.UpdateContractRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.invalidBody(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id")
	defer cancel()

	res, err := h.flow.UpdateContract(ctx, identity, id, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to update contract")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contract updated successfully", res)
}

// DeleteContract removes a contract without certificates
// @Summary Delete contract
// @Description Delete a contract (admin only). Contracts that still have certificates cannot be deleted.
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract ID"
// @Success 200 {object} dto.APIResponse "Contract deleted successfully"
// @Failure 400 {object} dto.APIResponse "Invalid ID"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Failure 409 {object} dto.APIResponse "Contract has certificates"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/contracts/{id} [delete]
func (h *ContractHandler) DeleteContract(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}
	id, ok := pathID(c)
	if !ok {
		return h.invalidID(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id")
	defer cancel()

	if err := h.flow.DeleteContract(ctx, identity, id); err != nil {
		return h.flowError(c, err, "Failed to delete contract")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contract deleted successfully", nil)
}
