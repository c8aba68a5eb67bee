// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/utils"
)

// normalizePage applies the default page (1) and page size (20, max 100)
func normalizePage(p dto.PaginationRequest) (page, pageSize, offset int) {
	page = p.Page
	if page < 1 {
		page = utils.DefaultPage
	}
	pageSize = p.PageSize
	if pageSize < 1 {
		pageSize = utils.DefaultPageSize
	}
	if pageSize > utils.MaxPageSize {
		pageSize = utils.MaxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toProfileResponse(p *models.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:         p.ID.String(),
		Role:       string(p.Role),
		BrokerCode: p.BrokerCode,
		FullName:   p.FullName,
		CreatedAt:  formatTimestamp(p.CreatedAt),
		UpdatedAt:  formatTimestamp(p.UpdatedAt),
	}
}

func toContractResponse(c *models.Contract) dto.ContractResponse {
	return dto.ContractResponse{
		ID:                     c.ID.String(),
		ContractNumber:         c.ContractNumber,
		InsuredName:            c.InsuredName,
		CoverageType:           c.CoverageType,
		StartDate:              utils.FormatDate(c.StartDate),
		EndDate:                utils.FormatDate(c.EndDate),
		BrokerCode:             c.BrokerCode,
		SumInsured:             c.SumInsured,
		AdditionalSIPercentage: c.AdditionalSIPercentage,
		MaxInsurableEUR:        c.MaxInsurableEUR().Round(2),
		CreatedAt:              formatTimestamp(c.CreatedAt),
		UpdatedAt:              formatTimestamp(c.UpdatedAt),
	}
}

func toCertificateResponse(c *models.Certificate) dto.CertificateResponse {
	resp := dto.CertificateResponse{
		ID:                c.ID.String(),
		CertificateNumber: c.CertificateNumber,
		ContractID:        c.ContractID.String(),
		InsuredName:       c.InsuredName,
		CargoDescription:  c.CargoDescription,
		DepartureCountry:  c.DepartureCountry,
		ArrivalCountry:    c.ArrivalCountry,
		TransportMeans:    c.TransportMeans,
		LoadingDate:       utils.FormatDate(c.LoadingDate),
		IssueDate:         utils.FormatDate(c.IssueDate),
		Currency:          c.Currency,
		ValueLocal:        c.ValueLocal,
		ValueEuro:         c.ValueEuro,
		ExchangeRate:      c.ExchangeRate,
		CreatedBy:         c.CreatedBy.String(),
		CreatedAt:         formatTimestamp(c.CreatedAt),
		UpdatedAt:         formatTimestamp(c.UpdatedAt),
	}
	if c.Contract != nil {
		resp.ContractNumber = c.Contract.ContractNumber
	}
	return resp
}
