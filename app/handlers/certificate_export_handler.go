package handlers

import (
	"fmt"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/middleware"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CertificateExportHandlerInterface interface {
	ExportCertificates(c fiber.Ctx) error
}

type CertificateExportHandler struct {
	baseHandler
	flow businessflow.CertificateExportFlow
}

func NewCertificateExportHandler(flow businessflow.CertificateExportFlow) *CertificateExportHandler {
	return &CertificateExportHandler{baseHandler: newBaseHandler(), flow: flow}
}

// ExportCertificates streams an xlsx workbook of certificates
// @Summary Export certificates
// @Description Download all certificates as an Excel workbook with contract numbers and EUR values (admin only)
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param contract_id query string false "Contract ID filter"
// @Param loading_from query string false "Earliest loading date (YYYY-MM-DD)"
// @Param loading_to query string false "Latest loading date (YYYY-MM-DD)"
// @Success 200 {file} file "Certificates workbook"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/certificates/export [get]
func (h *CertificateExportHandler) ExportCertificates(c fiber.Ctx) error {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	var req dto.ExportCertificatesRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.invalidQuery(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/certificates/export")
	defer cancel()

	filename, content, err := h.flow.ExportCertificates(ctx, identity, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to export certificates")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).Send(content)
}
