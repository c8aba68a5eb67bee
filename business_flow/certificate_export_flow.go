package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/repository"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const certificateExportSheet = "Certificates"

var certificateExportHeader = []any{
	"Certificate Number", "Contract Number", "Broker Code", "Insured Name", "Cargo Description",
	"Departure Country", "Arrival Country", "Transport Means", "Loading Date", "Issue Date",
	"Currency", "Value (Local)", "Exchange Rate", "Value (EUR)", "Created At",
}

// CertificateExportFlow produces spreadsheet exports of certificates
type CertificateExportFlow interface {
	ExportCertificates(ctx context.Context, identity *Identity, req *dto.ExportCertificatesRequest) (string, []byte, error)
}

// CertificateExportFlowImpl implements CertificateExportFlow
type CertificateExportFlowImpl struct {
	certRepo repository.CertificateRepository
	now      func() time.Time
}

func NewCertificateExportFlow(certRepo repository.CertificateRepository) CertificateExportFlow {
	return &CertificateExportFlowImpl{certRepo: certRepo, now: utils.UTCNow}
}

// ExportCertificates writes every matching certificate, ordered by number, into an xlsx workbook; admin only
func (f *CertificateExportFlowImpl) ExportCertificates(ctx context.Context, identity *Identity, req *dto.ExportCertificatesRequest) (string, []byte, error) {
	if err := Decide(identity, ActionExportCertificates, nil).Err(); err != nil {
		return "", nil, err
	}

	filter, err := exportFilter(req)
	if err != nil {
		return "", nil, err
	}

	certs, err := f.certRepo.ByFilter(ctx, filter, "certificates.certificate_number ASC", 0, 0)
	if err != nil {
		log.Printf("failed to load certificates for export: %v", err)
		return "", nil, newPersistenceError("Failed to export certificates", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), certificateExportSheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	header := certificateExportHeader
	if err := xl.SetSheetRow(certificateExportSheet, "A1", &header); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	if style, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(certificateExportHeader))
		_ = xl.SetCellStyle(certificateExportSheet, "A1", lastCol+"1", style)
	}
	_ = xl.SetPanes(certificateExportSheet, &excelize.Panes{Freeze: true, Split: false, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, c := range certs {
		contractNumber, brokerCode := "", ""
		if c.Contract != nil {
			contractNumber = c.Contract.ContractNumber
			brokerCode = c.Contract.BrokerCode
		}
		record := []any{
			c.CertificateNumber,
			contractNumber,
			brokerCode,
			c.InsuredName,
			c.CargoDescription,
			c.DepartureCountry,
			c.ArrivalCountry,
			c.TransportMeans,
			utils.FormatDate(c.LoadingDate),
			utils.FormatDate(c.IssueDate),
			c.Currency,
			c.ValueLocal.InexactFloat64(),
			c.ExchangeRate.InexactFloat64(),
			c.ValueEuro.InexactFloat64(),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(certificateExportSheet, cell, &record); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("certificates_%s.xlsx", f.now().UTC().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func exportFilter(req *dto.ExportCertificatesRequest) (models.CertificateFilter, error) {
	filter := models.CertificateFilter{}
	if req == nil {
		return filter, nil
	}
	if req.ContractID != nil && *req.ContractID != "" {
		id, err := uuid.Parse(*req.ContractID)
		if err != nil {
			return filter, NewValidationError("Contract id must be a valid UUID")
		}
		filter.ContractID = &id
	}
	if req.LoadingFrom != nil && *req.LoadingFrom != "" {
		from, err := utils.ParseDate(*req.LoadingFrom)
		if err != nil {
			return filter, NewValidationError("Loading from must be in YYYY-MM-DD format")
		}
		filter.LoadingDateAfter = &from
	}
	if req.LoadingTo != nil && *req.LoadingTo != "" {
		to, err := utils.ParseDate(*req.LoadingTo)
		if err != nil {
			return filter, NewValidationError("Loading to must be in YYYY-MM-DD format")
		}
		filter.LoadingDateBefore = &to
	}
	if filter.LoadingDateAfter != nil && filter.LoadingDateBefore != nil && filter.LoadingDateBefore.Before(*filter.LoadingDateAfter) {
		return filter, NewValidationError("Loading to must be on or after loading from")
	}
	return filter, nil
}
