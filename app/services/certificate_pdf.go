package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	pdfMargin     = 20.0
	pdfLabelWidth = 50.0
	pdfLineHeight = 7.0
	pdfHeaderH    = 40.0
)

// CertificateRenderer turns a certificate and its contract into a printable document
type CertificateRenderer interface {
	Render(cert *models.Certificate, contract *models.Contract) ([]byte, error)
}

// CertificatePDFRenderer renders A4 certificates with fpdf
type CertificatePDFRenderer struct {
	now func() time.Time
}

func NewCertificatePDFRenderer() *CertificatePDFRenderer {
	return NewCertificatePDFRendererWithClock(utils.UTCNow)
}

// NewCertificatePDFRendererWithClock uses now for the "Generated on" footer and document dates
func NewCertificatePDFRendererWithClock(now func() time.Time) *CertificatePDFRenderer {
	return &CertificatePDFRenderer{now: now}
}

// Render produces the PDF bytes. Translator and printer are per document so concurrent renders share no state.
func (r *CertificatePDFRenderer) Render(cert *models.Certificate, contract *models.Contract) ([]byte, error) {
	if cert == nil || contract == nil {
		return nil, fmt.Errorf("certificate and contract are required")
	}

	generatedAt := r.now()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetTitle("Certificate "+cert.CertificateNumber, true)
	pdf.SetCreator("cargo-certificates", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, 30)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := moneyFormatter(message.NewPrinter(language.English))
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	pdf.SetFooterFunc(func() {
		pdf.SetY(pageH - 20)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, tr("Generated on "+generatedAt.Format(utils.LongDateLayout)), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, "This certificate is electronically generated and valid without signature.", "", 1, "C", false, 0, "")
	})

	pdf.AddPage()

	// header band
	pdf.SetFillColor(30, 58, 95)
	pdf.Rect(0, 0, pageW, pdfHeaderH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(0, 12)
	pdf.CellFormat(pageW, 10, "CARGO INSURANCE CERTIFICATE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetXY(0, 26)
	pdf.CellFormat(pageW, 8, tr(cert.CertificateNumber), "", 1, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(pdfMargin, 55)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 8, title, "", 1, "L", false, 0, "")
	}
	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(pdfLabelWidth, pdfLineHeight, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW-pdfLabelWidth, pdfLineHeight, tr(value), "", 1, "L", false, 0, "")
	}
	gap := func(h float64) { pdf.Ln(h) }

	section("Certificate Details")
	field("Certificate No:", cert.CertificateNumber)
	field("Issue Date:", cert.IssueDate.Format(utils.LongDateLayout))
	field("Contract No:", contract.ContractNumber)
	field("Coverage Type:", contract.CoverageType)
	gap(5)

	section("Insured Information")
	field("Insured Name:", cert.InsuredName)
	gap(5)

	section("Cargo Details")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(pdfLabelWidth, pdfLineHeight, "Description:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(contentW-pdfLabelWidth, 5, tr(strings.TrimSpace(cert.CargoDescription)), "", "L", false)
	gap(2)
	field("Transport:", cert.TransportMeans)
	gap(5)

	section("Route Information")
	field("Departure:", cert.DepartureCountry)
	field("Arrival:", cert.ArrivalCountry)
	field("Loading Date:", cert.LoadingDate.Format(utils.LongDateLayout))
	gap(5)

	section("Value Information")
	field("Local Value:", money(cert.ValueLocal)+" "+cert.Currency)
	field("Value (EUR):", money(cert.ValueEuro)+" EUR")
	field("Exchange Rate:", fmt.Sprintf("1 %s = %s EUR", cert.Currency, cert.ExchangeRate.StringFixed(6)))
	gap(10)

	// validity callout, moved to a fresh page when it would not fit
	const boxH = 25.0
	if pdf.GetY()+boxH > pageH-30 {
		pdf.AddPage()
	}
	y := pdf.GetY()
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(245, 245, 245)
	pdf.RoundedRect(pdfMargin, y, contentW, boxH, 3, "1234", "FD")

	pdf.SetXY(pdfMargin+5, y+3)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW-10, 6, "Contract Validity Period", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW-10, 6, fmt.Sprintf("%s to %s",
		contract.StartDate.Format(utils.LongDateLayout), contract.EndDate.Format(utils.LongDateLayout)), "", 2, "L", false, 0, "")
	pdf.CellFormat(contentW-10, 6, fmt.Sprintf("Maximum Sum Insured: %s EUR (+%s%%)",
		money(contract.SumInsured), contract.AdditionalSIPercentage.String()), "", 2, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate %s: %w", cert.CertificateNumber, err)
	}
	return buf.Bytes(), nil
}

// moneyFormatter formats amounts with thousands separators and two decimals
func moneyFormatter(p *message.Printer) func(decimal.Decimal) string {
	return func(v decimal.Decimal) string {
		f, _ := v.Round(2).Float64()
		return p.Sprintf("%.2f", f)
	}
}
