package dto

import "github.com/shopspring/decimal"

// CreateCertificateRequest carries a new certificate; dates are YYYY-MM-DD.
// IssueDate defaults to today when omitted.
type CreateCertificateRequest struct {
	ContractID       string          `json:"contract_id" validate:"required,uuid4"`
	InsuredName      string          `json:"insured_name" validate:"required,max=200"`
	CargoDescription string          `json:"cargo_description" validate:"required,max=2000"`
	DepartureCountry string          `json:"departure_country" validate:"required,max=100"`
	ArrivalCountry   string          `json:"arrival_country" validate:"required,max=100"`
	TransportMeans   string          `json:"transport_means" validate:"required,max=100"`
	LoadingDate      string          `json:"loading_date" validate:"required,datetime=2006-01-02"`
	IssueDate        *string         `json:"issue_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Currency         string          `json:"currency" validate:"required,len=3,alpha"`
	ValueLocal       decimal.Decimal `json:"value_local"`
}

// UpdateCertificateRequest carries a partial certificate update; the certificate number cannot change
type UpdateCertificateRequest struct {
	ContractID       *string          `json:"contract_id,omitempty" validate:"omitempty,uuid4"`
	InsuredName      *string          `json:"insured_name,omitempty" validate:"omitempty,max=200"`
	CargoDescription *string          `json:"cargo_description,omitempty" validate:"omitempty,max=2000"`
	DepartureCountry *string          `json:"departure_country,omitempty" validate:"omitempty,max=100"`
	ArrivalCountry   *string          `json:"arrival_country,omitempty" validate:"omitempty,max=100"`
	TransportMeans   *string          `json:"transport_means,omitempty" validate:"omitempty,max=100"`
	LoadingDate      *string          `json:"loading_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IssueDate        *string          `json:"issue_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Currency         *string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	ValueLocal       *decimal.Decimal `json:"value_local,omitempty"`
}

// ListCertificatesRequest filters certificate listings
type ListCertificatesRequest struct {
	PaginationRequest
	ContractID *string `json:"contract_id,omitempty" query:"contract_id" validate:"omitempty,uuid"`
}

// CertificateResponse is the API view of a certificate
type CertificateResponse struct {
	ID                string          `json:"id"`
	CertificateNumber string          `json:"certificate_number"`
	ContractID        string          `json:"contract_id"`
	ContractNumber    string          `json:"contract_number,omitempty"`
	InsuredName       string          `json:"insured_name"`
	CargoDescription  string          `json:"cargo_description"`
	DepartureCountry  string          `json:"departure_country"`
	ArrivalCountry    string          `json:"arrival_country"`
	TransportMeans    string          `json:"transport_means"`
	LoadingDate       string          `json:"loading_date"`
	IssueDate         string          `json:"issue_date"`
	Currency          string          `json:"currency"`
	ValueLocal        decimal.Decimal `json:"value_local"`
	ValueEuro         decimal.Decimal `json:"value_euro"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
}

// ListCertificatesResponse is a page of certificates
type ListCertificatesResponse struct {
	Items      []CertificateResponse `json:"items"`
	Pagination PaginationInfo        `json:"pagination"`
}

// ExportCertificatesRequest narrows the admin spreadsheet export; loading dates are inclusive YYYY-MM-DD
type ExportCertificatesRequest struct {
	ContractID  *string `json:"contract_id,omitempty" query:"contract_id" validate:"omitempty,uuid"`
	LoadingFrom *string `json:"loading_from,omitempty" query:"loading_from" validate:"omitempty,datetime=2006-01-02"`
	LoadingTo   *string `json:"loading_to,omitempty" query:"loading_to" validate:"omitempty,datetime=2006-01-02"`
}
