package dto

import "github.com/shopspring/decimal"

// CreateContractRequest carries a new contract; dates are YYYY-MM-DD
type CreateContractRequest struct {
	ContractNumber         string          `json:"contract_number" validate:"required,max=50"`
	InsuredName            string          `json:"insured_name" validate:"required,max=200"`
	CoverageType           string          `json:"coverage_type" validate:"required,max=100"`
	StartDate              string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate                string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	BrokerCode             string          `json:"broker_code" validate:"required,max=50"`
	SumInsured             decimal.Decimal `json:"sum_insured"`
	AdditionalSIPercentage decimal.Decimal `json:"additional_si_percentage"`
}

// UpdateContractRequest carries a partial contract update
type UpdateContractRequest struct {
	ContractNumber         *string          `json:"contract_number,omitempty" validate:"omitempty,max=50"`
	InsuredName            *string          `json:"insured_name,omitempty" validate:"omitempty,max=200"`
	CoverageType           *string          `json:"coverage_type,omitempty" validate:"omitempty,max=100"`
	StartDate              *string          `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate                *string          `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BrokerCode             *string          `json:"broker_code,omitempty" validate:"omitempty,max=50"`
	SumInsured             *decimal.Decimal `json:"sum_insured,omitempty"`
	AdditionalSIPercentage *decimal.Decimal `json:"additional_si_percentage,omitempty"`
}

// ListContractsRequest filters contract listings
type ListContractsRequest struct {
	PaginationRequest
	BrokerCode *string `json:"broker_code,omitempty" query:"broker_code" validate:"omitempty,max=50"`
	ActiveOn   *string `json:"active_on,omitempty" query:"active_on" validate:"omitempty,datetime=2006-01-02"`
}

// ContractResponse is the API view of a contract
type ContractResponse struct {
	ID                     string          `json:"id"`
	ContractNumber         string          `json:"contract_number"`
	InsuredName            string          `json:"insured_name"`
	CoverageType           string          `json:"coverage_type"`
	StartDate              string          `json:"start_date"`
	EndDate                string          `json:"end_date"`
	BrokerCode             string          `json:"broker_code"`
	SumInsured             decimal.Decimal `json:"sum_insured"`
	AdditionalSIPercentage decimal.Decimal `json:"additional_si_percentage"`
	MaxInsurableEUR        decimal.Decimal `json:"max_insurable_eur"`
	CreatedAt              string          `json:"created_at"`
	UpdatedAt              string          `json:"updated_at"`
}

// ListContractsResponse is a page of contracts
type ListContractsResponse struct {
	Items      []ContractResponse `json:"items"`
	Pagination PaginationInfo     `json:"pagination"`
}
