package handlers

import (
	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/middleware"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/gofiber/fiber/v3"
)

type CertificateHandlerInterface interface {
	CreateCertificate(c fiber.Ctx) error
	ListCertificates(c fiber.Ctx) error
	GetCertificate(c fiber.Ctx) error
	UpdateCertificate(c fiber.Ctx) error
	DeleteCertificate(c fiber.Ctx) error
}

type CertificateHandler struct {
	baseHandler
	flow businessflow.CertificateFlow
}

func NewCertificateHandler(flow businessflow.CertificateFlow) *CertificateHandler {
	return &CertificateHandler{baseHandler: newBaseHandler(), flow: flow}
}

// CreateCertificate issues a cargo insurance certificate
// @Summary Create certificate
// @Description Issue a certificate under a contract. The local value is converted to EUR at the current rate and checked against the contract limit.
// @Tags Certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCertificateRequest true "Certificate"
// @Success 201 {object} dto.APIResponse{data=dto.CertificateResponse} "Certificate created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or unsupported currency"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Failure 409 {object} dto.APIResponse "Certificate number conflict"
// @Failure 502 {object} dto.APIResponse "Exchange rate service unavailable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/certificates [post]
func (h *CertificateHandler) CreateCertificate(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	var req dto.CreateCertificateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.invalidBody(c, err)
	}
	req.Currency = utils.NormalizeCurrency(req.Currency)
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/certificates")
	defer cancel()

	res, err := h.flow.CreateCertificate(ctx, identity, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to create certificate")
	}

	middleware.RecordCertificateIssued()
	return h.SuccessResponse(c, fiber.StatusCreated, "Certificate created successfully", res)
}

// ListCertificates returns the certificates visible to the caller
// @Summary List certificates
// @Description Admins see every certificate; brokers see certificates under their own contracts. Newest first.
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)" default(20)
// @Param contract_id query string false "Contract ID filter"
// @Success 200 {object} dto.APIResponse{data=dto.ListCertificatesResponse} "Certificates retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/certificates [get]
func (h *CertificateHandler) ListCertificates(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	var req dto.ListCertificatesRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.invalidQuery(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/certificates")
	defer cancel()

	res, err := h.flow.ListCertificates(ctx, identity, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to list certificates")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Certificates retrieved successfully", res)
}

// GetCertificate returns one certificate
// @Summary Get certificate
// @Description Retrieve a certificate by ID
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} dto.APIResponse{data=dto.CertificateResponse} "Certificate retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid ID"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Certificate not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/certificates/{id} [get]
func (h *CertificateHandler) GetCertificate(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}
	id, ok := pathID(c)
	if !ok {
		return h.invalidID(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/certificates/:id")
	defer cancel()

	res, err := h.flow.GetCertificate(ctx, identity, id)
	if err != nil {
		return h.flowError(c, err, "Failed to get certificate")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Certificate retrieved successfully", res)
}

// UpdateCertificate applies a partial update to a certificate
// @Summary Update certificate
// @Description Update certificate fields. The certificate number never changes; dates and value are re-checked against the contract.
// @Tags Certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Param request body dto.UpdateCertificateRequest true "Certificate changes"
// @Success 200 {object} dto.APIResponse{data=dto.CertificateResponse} "Certificate updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or unsupported currency"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Certificate not found"
// @Failure 502 {object} dto.APIResponse "Exchange rate service unavailable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/certificates/{id} [put]
func (h *CertificateHandler) UpdateCertificate(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}
	id, ok := pathID(c)
	if !ok {
		return h.invalidID(c)
	}

	var req dto.UpdateCertificateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.invalidBody(c, err)
	}
	if req.Currency != nil {
		currency := utils.NormalizeCurrency(*req.Currency)
		req.Currency = &currency
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/certificates/:id")
	defer cancel()

	res, err := h.flow.UpdateCertificate(ctx, identity, id, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to update certificate")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Certificate updated successfully", res)
}

// DeleteCertificate removes a certificate
// @Summary Delete certificate
// @Description Delete a certificate
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} dto.APIResponse "Certificate deleted successfully"
// @Failure 400 {object} dto.APIResponse "Invalid ID"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Certificate not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/certificates/{id} [delete]
func (h *CertificateHandler) DeleteCertificate(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}
	id, ok := pathID(c)
	if !ok {
		return h.invalidID(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/certificates/:id")
	defer cancel()

	if err := h.flow.DeleteCertificate(ctx, identity, id); err != nil {
		return h.flowError(c, err, "Failed to delete certificate")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Certificate deleted successfully", nil)
}
