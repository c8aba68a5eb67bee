package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateRepositoryImpl implements CertificateRepository interface
type CertificateRepositoryImpl struct {
	*BaseRepository[models.Certificate, models.CertificateFilter]
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &CertificateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Certificate, models.CertificateFilter](db),
	}
}

// ByIDWithContract retrieves a certificate with its contract preloaded
func (r *CertificateRepositoryImpl) ByIDWithContract(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	var row models.Certificate
	err := r.getDB(ctx).Preload("Contract").Where("certificates.id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// LatestNumberWithPrefix returns the greatest certificate number starting with prefix, or "" when none exist.
// Numbers are zero padded so the lexicographic maximum is the numeric one.
func (r *CertificateRepositoryImpl) LatestNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.getDB(ctx).
		Model(&models.Certificate{}).
		Where("certificate_number LIKE ?", prefix+"%").
		Order("certificate_number DESC").
		Limit(1).
		Pluck("certificate_number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("failed to read latest certificate number: %w", err)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (r *CertificateRepositoryImpl) applyFilter(query *gorm.DB, filter models.CertificateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("certificates.id = ?", *filter.ID)
	}
	if filter.ContractID != nil {
		query = query.Where("certificates.contract_id = ?", *filter.ContractID)
	}
	if filter.BrokerCode != nil {
		query = query.Joins("JOIN contracts ON contracts.id = certificates.contract_id").
			Where("contracts.broker_code = ?", *filter.BrokerCode)
	}
	if filter.CreatedBy != nil {
		query = query.Where("certificates.created_by = ?", *filter.CreatedBy)
	}
	if filter.LoadingDateAfter != nil {
		query = query.Where("certificates.loading_date >= ?", *filter.LoadingDateAfter)
	}
	if filter.LoadingDateBefore != nil {
		query = query.Where("certificates.loading_date <= ?", *filter.LoadingDateBefore)
	}
	return query
}

// ByFilter retrieves certificates based on filter criteria, with contracts preloaded
func (r *CertificateRepositoryImpl) ByFilter(ctx context.Context, filter models.CertificateFilter, orderBy string, limit, offset int) ([]*models.Certificate, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Certificate{}), filter)

	if orderBy == "" {
		orderBy = "certificates.created_at DESC"
	}
	query = paginate(query.Preload("Contract").Order(orderBy), limit, offset)

	var rows []*models.Certificate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of certificates matching filter
func (r *CertificateRepositoryImpl) Count(ctx context.Context, filter models.CertificateFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.getDB(ctx).Model(&models.Certificate{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any certificate matches the filter
func (r *CertificateRepositoryImpl) Exists(ctx context.Context, filter models.CertificateFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
