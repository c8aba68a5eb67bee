package handlers

import (
	"fmt"
	"strconv"

	"github.com/amirphl/cargo-certificates/app/middleware"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CertificatePDFHandlerInterface interface {
	DownloadCertificatePDF(c fiber.Ctx) error
}

type CertificatePDFHandler struct {
	baseHandler
	flow businessflow.CertificateFlow
}

func NewCertificatePDFHandler(flow businessflow.CertificateFlow) *CertificatePDFHandler {
	return &CertificatePDFHandler{baseHandler: newBaseHandler(), flow: flow}
}

// DownloadCertificatePDF renders a certificate as a PDF attachment
// @Summary Download certificate PDF
// @Description Render the certificate document. The file is named after the certificate number.
// @Tags Certificates
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Certificate ID (UUID v4)"
// @Success 200 {file} file "Certificate PDF"
// @Failure 400 {object} dto.APIResponse "Invalid certificate ID"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Certificate not found"
// @Failure 500 {object} dto.APIResponse "PDF generation failed"
// @Router /api/pdf/{id} [get]
func (h *CertificatePDFHandler) DownloadCertificatePDF(c fiber.Ctx) error {
	rawID := c.Params("id")
	if !utils.IsUUIDv4(rawID) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid certificate ID", "INVALID_ID", nil)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid certificate ID", "INVALID_ID", nil)
	}

	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		return h.notAuthenticated(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/pdf/:id")
	defer cancel()

	doc, err := h.flow.GetCertificateDocument(ctx, identity, id)
	if err != nil {
		return h.flowError(c, err, "Failed to generate PDF")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(doc.Content)))
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
	return c.Status(fiber.StatusOK).Send(doc.Content)
}
