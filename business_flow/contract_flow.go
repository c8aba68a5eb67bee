package businessflow

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/repository"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var maxAdditionalSIPercentage = decimal.RequireFromString("999.99")

// ContractFlow handles contract administration and lookup
type ContractFlow interface {
	CreateContract(ctx context.Context, identity *Identity, req *dto.CreateContractRequest) (*dto.ContractResponse, error)
	GetContract(ctx context.Context, identity *Identity, id uuid.UUID) (*dto.ContractResponse, error)
	ListContracts(ctx context.Context, identity *Identity, req *dto.ListContractsRequest) (*dto.ListContractsResponse, error)
	UpdateContract(ctx context.Context, identity *Identity, id uuid.UUID, req *dto.UpdateContractRequest) (*dto.ContractResponse, error)
	DeleteContract(ctx context.Context, identity *Identity, id uuid.UUID) error
}

// ContractFlowImpl implements ContractFlow
type ContractFlowImpl struct {
	contractRepo repository.ContractRepository
	certRepo     repository.CertificateRepository
	now          func() time.Time
}

func NewContractFlow(contractRepo repository.ContractRepository, certRepo repository.CertificateRepository) ContractFlow {
	return &ContractFlowImpl{
		contractRepo: contractRepo,
		certRepo:     certRepo,
		now:          utils.UTCNow,
	}
}

type contractFields struct {
	ContractNumber         string
	InsuredName            string
	CoverageType           string
	StartDate              string
	EndDate                string
	BrokerCode             string
	SumInsured             decimal.Decimal
	AdditionalSIPercentage decimal.Decimal
}

// normalize trims free text and identifiers before validation
func (f *contractFields) normalize() {
	f.ContractNumber = strings.TrimSpace(f.ContractNumber)
	f.InsuredName = strings.TrimSpace(f.InsuredName)
	f.CoverageType = strings.TrimSpace(f.CoverageType)
	f.BrokerCode = strings.TrimSpace(f.BrokerCode)
}

func validateContractFields(f *contractFields) (start, end time.Time, err error) {
	f.normalize()
	required := []struct {
		name  string
		value string
		max   int
	}{
		{"Contract number", f.ContractNumber, 50},
		{"Insured name", f.InsuredName, 200},
		{"Coverage type", f.CoverageType, 100},
		{"Broker code", f.BrokerCode, 50},
	}
	for _, r := range required {
		if err = checkText(r.name, r.value, r.max); err != nil {
			return
		}
	}

	if !f.SumInsured.IsPositive() {
		err = NewValidationError("Sum insured must be greater than zero")
		return
	}
	if f.AdditionalSIPercentage.IsNegative() || f.AdditionalSIPercentage.GreaterThan(maxAdditionalSIPercentage) {
		err = NewValidationError("Additional SI percentage must be between 0 and 999.99")
		return
	}

	if start, err = utils.ParseDate(f.StartDate); err != nil {
		err = NewValidationError("Start date must be in YYYY-MM-DD format")
		return
	}
	if end, err = utils.ParseDate(f.EndDate); err != nil {
		err = NewValidationError("End date must be in YYYY-MM-DD format")
		return
	}
	if end.Before(start) {
		err = NewValidationError("End date must be on or after start date")
		return
	}
	return start, end, nil
}

// CreateContract creates a contract; admin only
func (f *ContractFlowImpl) CreateContract(ctx context.Context, identity *Identity, req *dto.CreateContractRequest) (*dto.ContractResponse, error) {
	if err := Decide(identity, ActionCreateContract, nil).Err(); err != nil {
		return nil, err
	}

	fields := contractFields{
		ContractNumber:         req.ContractNumber,
		InsuredName:            req.InsuredName,
		CoverageType:           req.CoverageType,
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
		BrokerCode:             req.BrokerCode,
		SumInsured:             req.SumInsured,
		AdditionalSIPercentage: req.AdditionalSIPercentage,
	}
	start, end, err := validateContractFields(&fields)
	if err != nil {
		return nil, err
	}

	if err := f.ensureNumberAvailable(ctx, fields.ContractNumber, uuid.Nil); err != nil {
		return nil, err
	}

	now := f.now()
	contract := &models.Contract{
		ID:                     uuid.New(),
		ContractNumber:         fields.ContractNumber,
		InsuredName:            fields.InsuredName,
		CoverageType:           fields.CoverageType,
		StartDate:              start,
		EndDate:                end,
		BrokerCode:             fields.BrokerCode,
		SumInsured:             fields.SumInsured,
		AdditionalSIPercentage: fields.AdditionalSIPercentage,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := f.contractRepo.Save(ctx, contract); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, contractNumberExists()
		}
		log.Printf("failed to save contract %s: %v", contract.ContractNumber, err)
		return nil, newPersistenceError("Failed to create contract", err)
	}

	resp := toContractResponse(contract)
	return &resp, nil
}

// GetContract returns a contract owned by the caller, or any contract for admins
func (f *ContractFlowImpl) GetContract(ctx context.Context, identity *Identity, id uuid.UUID) (*dto.ContractResponse, error) {
	if identity == nil {
		return nil, Decide(nil, ActionReadContract, nil).Err()
	}
	contract, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Decide(identity, ActionReadContract, contract).Err(); err != nil {
		return nil, err
	}
	resp := toContractResponse(contract)
	return &resp, nil
}

// ListContracts returns a page of contracts, newest first. Brokers only see their own.
func (f *ContractFlowImpl) ListContracts(ctx context.Context, identity *Identity, req *dto.ListContractsRequest) (*dto.ListContractsResponse, error) {
	decision := Decide(identity, ActionListContracts, nil)
	if err := decision.Err(); err != nil {
		return nil, err
	}

	page, pageSize, offset := normalizePage(req.PaginationRequest)
	resp := &dto.ListContractsResponse{
		Items:      []dto.ContractResponse{},
		Pagination: dto.NewPaginationInfo(page, pageSize, 0),
	}

	filter := models.ContractFilter{}
	if req.ActiveOn != nil && *req.ActiveOn != "" {
		day, err := utils.ParseDate(*req.ActiveOn)
		if err != nil {
			return nil, NewValidationError("Active on must be in YYYY-MM-DD format")
		}
		filter.ActiveOn = &day
	}

	switch decision.Scope {
	case ScopeNone:
		return resp, nil
	case ScopeOwned:
		filter.BrokerCode = identity.BrokerCode
	case ScopeAll:
		if req.BrokerCode != nil && *req.BrokerCode != "" {
			filter.BrokerCode = req.BrokerCode
		}
	}

	total, err := f.contractRepo.Count(ctx, filter)
	if err != nil {
		return nil, newPersistenceError("Failed to list contracts", err)
	}
	contracts, err := f.contractRepo.ByFilter(ctx, filter, "", pageSize, offset)
	if err != nil {
		return nil, newPersistenceError("Failed to list contracts", err)
	}

	for _, c := range contracts {
		resp.Items = append(resp.Items, toContractResponse(c))
	}
	resp.Pagination = dto.NewPaginationInfo(page, pageSize, total)
	return resp, nil
}

// UpdateContract merges the given fields onto a contract; admin only.
// Existing certificates are not re-validated against the new terms.
func (f *ContractFlowImpl) UpdateContract(ctx context.Context, identity *Identity, id uuid.UUID, req *dto.UpdateContractRequest) (*dto.ContractResponse, error) {
	if err := Decide(identity, ActionUpdateContract, nil).Err(); err != nil {
		return nil, err
	}

	contract, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := contractFields{
		ContractNumber:         contract.ContractNumber,
		InsuredName:            contract.InsuredName,
		CoverageType:           contract.CoverageType,
		StartDate:              utils.FormatDate(contract.StartDate),
		EndDate:                utils.FormatDate(contract.EndDate),
		BrokerCode:             contract.BrokerCode,
		SumInsured:             contract.SumInsured,
		AdditionalSIPercentage: contract.AdditionalSIPercentage,
	}
	mergeString(&fields.ContractNumber, req.ContractNumber)
	mergeString(&fields.InsuredName, req.InsuredName)
	mergeString(&fields.CoverageType, req.CoverageType)
	mergeString(&fields.StartDate, req.StartDate)
	mergeString(&fields.EndDate, req.EndDate)
	mergeString(&fields.BrokerCode, req.BrokerCode)
	if req.SumInsured != nil {
		fields.SumInsured = *req.SumInsured
	}
	if req.AdditionalSIPercentage != nil {
		fields.AdditionalSIPercentage = *req.AdditionalSIPercentage
	}

	start, end, err := validateContractFields(&fields)
	if err != nil {
		return nil, err
	}

	if fields.ContractNumber != contract.ContractNumber {
		if err := f.ensureNumberAvailable(ctx, fields.ContractNumber, contract.ID); err != nil {
			return nil, err
		}
	}

	contract.ContractNumber = fields.ContractNumber
	contract.InsuredName = fields.InsuredName
	contract.CoverageType = fields.CoverageType
	contract.StartDate = start
	contract.EndDate = end
	contract.BrokerCode = fields.BrokerCode
	contract.SumInsured = fields.SumInsured
	contract.AdditionalSIPercentage = fields.AdditionalSIPercentage
	contract.UpdatedAt = f.now()

	if err := f.contractRepo.Update(ctx, contract); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, contractNumberExists()
		}
		log.Printf("failed to update contract %s: %v", contract.ID, err)
		return nil, newPersistenceError("Failed to update contract", err)
	}

	resp := toContractResponse(contract)
	return &resp, nil
}

// DeleteContract removes a contract without certificates; admin only
func (f *ContractFlowImpl) DeleteContract(ctx context.Context, identity *Identity, id uuid.UUID) error {
	if err := Decide(identity, ActionDeleteContract, nil).Err(); err != nil {
		return err
	}

	contract, err := f.load(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := f.certRepo.Exists(ctx, models.CertificateFilter{ContractID: &contract.ID})
	if err != nil {
		return newPersistenceError("Failed to delete contract", err)
	}
	if inUse {
		return NewBusinessError(CodeContractInUse, "Contract has certificates and cannot be deleted", ErrContractInUse)
	}

	if err := f.contractRepo.Delete(ctx, contract.ID); err != nil {
		log.Printf("failed to delete contract %s: %v", contract.ID, err)
		return newPersistenceError("Failed to delete contract", err)
	}
	return nil
}

func (f *ContractFlowImpl) load(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := f.contractRepo.ByID(ctx, id)
	if err != nil {
		log.Printf("failed to load contract %s: %v", id, err)
		return nil, newPersistenceError("Failed to load contract", err)
	}
	if contract == nil {
		return nil, NewBusinessError(CodeContractNotFound, "Contract not found", ErrContractNotFound)
	}
	return contract, nil
}

// ensureNumberAvailable fails when another contract than self already uses number
func (f *ContractFlowImpl) ensureNumberAvailable(ctx context.Context, number string, self uuid.UUID) error {
	existing, err := f.contractRepo.ByContractNumber(ctx, number)
	if err != nil {
		return newPersistenceError("Failed to check contract number", err)
	}
	if existing != nil && existing.ID != self {
		return contractNumberExists()
	}
	return nil
}

func contractNumberExists() error {
	return NewBusinessError(CodeContractNumberExists, "Contract number already exists", ErrContractNumberExists)
}
