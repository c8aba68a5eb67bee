package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/services"
	"github.com/amirphl/cargo-certificates/app/storage"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/repository"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
)

// CertificateFlow handles the certificate workflow
type CertificateFlow interface {
	CreateCertificate(ctx context.Context, identity *Identity, req *dto.CreateCertificateRequest) (*dto.CertificateResponse, error)
	GetCertificate(ctx context.Context, identity *Identity, id uuid.UUID) (*dto.CertificateResponse, error)
	ListCertificates(ctx context.Context, identity *Identity, req *dto.ListCertificatesRequest) (*dto.ListCertificatesResponse, error)
	UpdateCertificate(ctx context.Context, identity *Identity, id uuid.UUID, req *dto.UpdateCertificateRequest) (*dto.CertificateResponse, error)
	DeleteCertificate(ctx context.Context, identity *Identity, id uuid.UUID) error
	GetCertificateDocument(ctx context.Context, identity *Identity, id uuid.UUID) (*CertificateDocument, error)
}

// CertificateDocument is a rendered certificate ready to be served
type CertificateDocument struct {
	FileName string
	Content  []byte
}

// CertificateFlowImpl implements CertificateFlow
type CertificateFlowImpl struct {
	certRepo     repository.CertificateRepository
	contractRepo repository.ContractRepository
	allocator    CertificateNumberAllocator
	rates        services.ExchangeRateClient
	renderer     services.CertificateRenderer
	archive      storage.Driver
	now          func() time.Time
}

// NewCertificateFlow constructs a CertificateFlow. archive may be nil to skip archiving documents.
func NewCertificateFlow(
	certRepo repository.CertificateRepository,
	contractRepo repository.ContractRepository,
	allocator CertificateNumberAllocator,
	rates services.ExchangeRateClient,
	renderer services.CertificateRenderer,
	archive storage.Driver,
) CertificateFlow {
	return &CertificateFlowImpl{
		certRepo:     certRepo,
		contractRepo: contractRepo,
		allocator:    allocator,
		rates:        rates,
		renderer:     renderer,
		archive:      archive,
		now:          utils.UTCNow,
	}
}

// CreateCertificate validates the request against its contract, converts the value to EUR,
// allocates the next number for the current year and persists the certificate
func (f *CertificateFlowImpl) CreateCertificate(ctx context.Context, identity *Identity, req *dto.CreateCertificateRequest) (*dto.CertificateResponse, error) {
	if identity == nil {
		return nil, Decide(nil, ActionCreateCertificate, nil).Err()
	}

	today := utils.DateOnly(f.now())
	fields := certificateFields{
		InsuredName:      req.InsuredName,
		CargoDescription: req.CargoDescription,
		DepartureCountry: req.DepartureCountry,
		ArrivalCountry:   req.ArrivalCountry,
		TransportMeans:   req.TransportMeans,
		LoadingDate:      req.LoadingDate,
		IssueDate:        utils.FormatDate(today),
		Currency:         req.Currency,
		ValueLocal:       req.ValueLocal,
	}
	if req.IssueDate != nil && *req.IssueDate != "" {
		fields.IssueDate = *req.IssueDate
	}

	parsed, err := validateCertificateFields(&fields)
	if err != nil {
		return nil, err
	}

	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		return nil, NewValidationError("Contract id must be a valid UUID")
	}
	contract, err := f.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if err := Decide(identity, ActionCreateCertificate, contract).Err(); err != nil {
		return nil, err
	}

	if err := ValidateLoadingDate(contract, parsed.loadingDate); err != nil {
		return nil, err
	}

	conversion, err := f.rates.ConvertToEUR(ctx, fields.ValueLocal, fields.Currency)
	if err != nil {
		return nil, err
	}

	if err := ValidateValueLimit(contract, conversion.ValueEuro); err != nil {
		return nil, err
	}

	number, err := f.allocator.Next(ctx, today.Year())
	if err != nil {
		log.Printf("certificate number allocation failed: %v", err)
		return nil, err
	}

	now := f.now()
	cert := &models.Certificate{
		ID:                uuid.New(),
		CertificateNumber: number,
		ContractID:        contract.ID,
		InsuredName:       fields.InsuredName,
		CargoDescription:  fields.CargoDescription,
		DepartureCountry:  fields.DepartureCountry,
		ArrivalCountry:    fields.ArrivalCountry,
		TransportMeans:    fields.TransportMeans,
		LoadingDate:       parsed.loadingDate,
		IssueDate:         parsed.issueDate,
		Currency:          fields.Currency,
		ValueLocal:        fields.ValueLocal,
		ValueEuro:         conversion.ValueEuro,
		ExchangeRate:      conversion.ExchangeRate,
		CreatedBy:         identity.ProfileID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := f.certRepo.Save(ctx, cert); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, NewBusinessErrorf(CodeCertificateNumberConflict, "Certificate number %s is already taken, please retry", ErrCertificateNumberConflict, number)
		}
		log.Printf("failed to save certificate %s: %v", number, err)
		return nil, newPersistenceError("Failed to create certificate", err)
	}

	cert.Contract = contract
	resp := toCertificateResponse(cert)
	return &resp, nil
}

// GetCertificate returns a certificate visible to the caller
func (f *CertificateFlowImpl) GetCertificate(ctx context.Context, identity *Identity, id uuid.UUID) (*dto.CertificateResponse, error) {
	cert, err := f.authorizedCertificate(ctx, identity, ActionReadCertificate, id)
	if err != nil {
		return nil, err
	}
	resp := toCertificateResponse(cert)
	return &resp, nil
}

// ListCertificates returns a page of certificates, newest first, limited to the caller's contracts for brokers
func (f *CertificateFlowImpl) ListCertificates(ctx context.Context, identity *Identity, req *dto.ListCertificatesRequest) (*dto.ListCertificatesResponse, error) {
	decision := Decide(identity, ActionListCertificates, nil)
	if err := decision.Err(); err != nil {
		return nil, err
	}

	page, pageSize, offset := normalizePage(req.PaginationRequest)
	resp := &dto.ListCertificatesResponse{
		Items:      []dto.CertificateResponse{},
		Pagination: dto.NewPaginationInfo(page, pageSize, 0),
	}
	if decision.Scope == ScopeNone {
		return resp, nil
	}

	filter := models.CertificateFilter{}
	if decision.Scope == ScopeOwned {
		filter.BrokerCode = identity.BrokerCode
	}
	if req.ContractID != nil && *req.ContractID != "" {
		contractID, err := uuid.Parse(*req.ContractID)
		if err != nil {
			return nil, NewValidationError("Contract id must be a valid UUID")
		}
		filter.ContractID = &contractID
	}

	total, err := f.certRepo.Count(ctx, filter)
	if err != nil {
		return nil, newPersistenceError("Failed to list certificates", err)
	}
	certs, err := f.certRepo.ByFilter(ctx, filter, "", pageSize, offset)
	if err != nil {
		return nil, newPersistenceError("Failed to list certificates", err)
	}

	for _, c := range certs {
		resp.Items = append(resp.Items, toCertificateResponse(c))
	}
	resp.Pagination = dto.NewPaginationInfo(page, pageSize, total)
	return resp, nil
}

// UpdateCertificate merges the given fields onto the certificate and re-runs every contract check.
// The certificate number never changes; the EUR value is recomputed when currency or value change.
func (f *CertificateFlowImpl) UpdateCertificate(ctx context.Context, identity *Identity, id uuid.UUID, req *dto.UpdateCertificateRequest) (*dto.CertificateResponse, error) {
	cert, err := f.authorizedCertificate(ctx, identity, ActionUpdateCertificate, id)
	if err != nil {
		return nil, err
	}

	staleKey := CertificateArchiveKey(cert)
	contract := cert.Contract
	if req.ContractID != nil && *req.ContractID != cert.ContractID.String() {
		contractID, err := uuid.Parse(*req.ContractID)
		if err != nil {
			return nil, NewValidationError("Contract id must be a valid UUID")
		}
		if contractID != cert.ContractID {
			if contract, err = f.loadContract(ctx, contractID); err != nil {
				return nil, err
			}
			if err := Decide(identity, ActionUpdateCertificate, contract).Err(); err != nil {
				return nil, err
			}
		}
	}

	fields := certificateFields{
		InsuredName:      cert.InsuredName,
		CargoDescription: cert.CargoDescription,
		DepartureCountry: cert.DepartureCountry,
		ArrivalCountry:   cert.ArrivalCountry,
		TransportMeans:   cert.TransportMeans,
		LoadingDate:      utils.FormatDate(cert.LoadingDate),
		IssueDate:        utils.FormatDate(cert.IssueDate),
		Currency:         cert.Currency,
		ValueLocal:       cert.ValueLocal,
	}
	mergeString(&fields.InsuredName, req.InsuredName)
	mergeString(&fields.CargoDescription, req.CargoDescription)
	mergeString(&fields.DepartureCountry, req.DepartureCountry)
	mergeString(&fields.ArrivalCountry, req.ArrivalCountry)
	mergeString(&fields.TransportMeans, req.TransportMeans)
	mergeString(&fields.LoadingDate, req.LoadingDate)
	mergeString(&fields.IssueDate, req.IssueDate)
	mergeString(&fields.Currency, req.Currency)
	if req.ValueLocal != nil {
		fields.ValueLocal = *req.ValueLocal
	}

	parsed, err := validateCertificateFields(&fields)
	if err != nil {
		return nil, err
	}

	if err := ValidateLoadingDate(contract, parsed.loadingDate); err != nil {
		return nil, err
	}

	valueEuro, rate := cert.ValueEuro, cert.ExchangeRate
	if fields.Currency != cert.Currency || !fields.ValueLocal.Equal(cert.ValueLocal) {
		conversion, err := f.rates.ConvertToEUR(ctx, fields.ValueLocal, fields.Currency)
		if err != nil {
			return nil, err
		}
		valueEuro, rate = conversion.ValueEuro, conversion.ExchangeRate
	}

	if err := ValidateValueLimit(contract, valueEuro); err != nil {
		return nil, err
	}

	cert.ContractID = contract.ID
	cert.InsuredName = fields.InsuredName
	cert.CargoDescription = fields.CargoDescription
	cert.DepartureCountry = fields.DepartureCountry
	cert.ArrivalCountry = fields.ArrivalCountry
	cert.TransportMeans = fields.TransportMeans
	cert.LoadingDate = parsed.loadingDate
	cert.IssueDate = parsed.issueDate
	cert.Currency = fields.Currency
	cert.ValueLocal = fields.ValueLocal
	cert.ValueEuro = valueEuro
	cert.ExchangeRate = rate
	cert.UpdatedAt = f.now()
	// keep gorm from upserting the association
	cert.Contract = nil

	if err := f.certRepo.Update(ctx, cert); err != nil {
		log.Printf("failed to update certificate %s: %v", cert.CertificateNumber, err)
		return nil, newPersistenceError("Failed to update certificate", err)
	}

	// the archived PDF no longer matches; the next download archives a fresh copy
	f.discardArchivedDocument(ctx, cert.CertificateNumber, staleKey)

	cert.Contract = contract
	resp := toCertificateResponse(cert)
	return &resp, nil
}

// DeleteCertificate removes a certificate owned by the caller
func (f *CertificateFlowImpl) DeleteCertificate(ctx context.Context, identity *Identity, id uuid.UUID) error {
	cert, err := f.authorizedCertificate(ctx, identity, ActionDeleteCertificate, id)
	if err != nil {
		return err
	}

	if err := f.certRepo.Delete(ctx, cert.ID); err != nil {
		log.Printf("failed to delete certificate %s: %v", cert.CertificateNumber, err)
		return newPersistenceError("Failed to delete certificate", err)
	}

	f.discardArchivedDocument(ctx, cert.CertificateNumber, CertificateArchiveKey(cert))
	return nil
}

// GetCertificateDocument renders the certificate as PDF and archives a copy when storage is configured
func (f *CertificateFlowImpl) GetCertificateDocument(ctx context.Context, identity *Identity, id uuid.UUID) (*CertificateDocument, error) {
	cert, err := f.authorizedCertificate(ctx, identity, ActionReadCertificate, id)
	if err != nil {
		return nil, err
	}

	content, err := f.renderer.Render(cert, cert.Contract)
	if err != nil {
		log.Printf("failed to render certificate %s: %v", cert.CertificateNumber, err)
		return nil, NewBusinessError(CodePDFGeneration, "Failed to generate PDF", err)
	}

	f.archiveDocument(ctx, cert, content)

	return &CertificateDocument{
		FileName: cert.CertificateNumber + ".pdf",
		Content:  content,
	}, nil
}

// CertificateArchiveKey is the storage key of a certificate's archived PDF
func CertificateArchiveKey(cert *models.Certificate) string {
	return fmt.Sprintf("certificates/%d/%s.pdf", cert.IssueDate.Year(), cert.CertificateNumber)
}

func (f *CertificateFlowImpl) archiveDocument(ctx context.Context, cert *models.Certificate, content []byte) {
	if f.archive == nil {
		return
	}
	key := CertificateArchiveKey(cert)
	if err := f.archive.Save(ctx, key, bytes.NewReader(content), "application/pdf"); err != nil {
		log.Printf("failed to archive certificate %s at %s: %v", cert.CertificateNumber, key, err)
	}
}

func (f *CertificateFlowImpl) discardArchivedDocument(ctx context.Context, number, key string) {
	if f.archive == nil {
		return
	}
	if err := f.archive.Delete(ctx, key); err != nil {
		log.Printf("failed to remove archived certificate %s at %s: %v", number, key, err)
	}
}

// authorizedCertificate loads a certificate with its contract and applies the gate for action
func (f *CertificateFlowImpl) authorizedCertificate(ctx context.Context, identity *Identity, action Action, id uuid.UUID) (*models.Certificate, error) {
	if identity == nil {
		return nil, Decide(nil, action, nil).Err()
	}

	cert, err := f.certRepo.ByIDWithContract(ctx, id)
	if err != nil {
		log.Printf("failed to load certificate %s: %v", id, err)
		return nil, newPersistenceError("Failed to load certificate", err)
	}
	if cert == nil {
		return nil, NewBusinessError(CodeCertificateNotFound, "Certificate not found", ErrCertificateNotFound)
	}
	if cert.Contract == nil {
		return nil, newPersistenceError("Failed to load certificate", fmt.Errorf("contract %s of certificate %s is missing", cert.ContractID, cert.ID))
	}

	if err := Decide(identity, action, cert.Contract).Err(); err != nil {
		return nil, err
	}
	return cert, nil
}

func (f *CertificateFlowImpl) loadContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
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

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
