package repository

import (
	"context"

	"github.com/amirphl/cargo-certificates/models"
	"gorm.io/gorm"
)

// ContractRepositoryImpl implements ContractRepository interface
type ContractRepositoryImpl struct {
	*BaseRepository[models.Contract, models.ContractFilter]
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &ContractRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Contract, models.ContractFilter](db),
	}
}

// ByContractNumber retrieves a contract by its business key
func (r *ContractRepositoryImpl) ByContractNumber(ctx context.Context, number string) (*models.Contract, error) {
	rows, err := r.ByFilter(ctx, models.ContractFilter{ContractNumber: &number}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ContractRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContractFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ContractNumber != nil {
		query = query.Where("contract_number = ?", *filter.ContractNumber)
	}
	if filter.BrokerCode != nil {
		query = query.Where("broker_code = ?", *filter.BrokerCode)
	}
	if filter.ActiveOn != nil {
		query = query.Where("start_date <= ? AND end_date >= ?", *filter.ActiveOn, *filter.ActiveOn)
	}
	return query
}

// ByFilter retrieves contracts based on filter criteria
func (r *ContractRepositoryImpl) ByFilter(ctx context.Context, filter models.ContractFilter, orderBy string, limit, offset int) ([]*models.Contract, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Contract{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = paginate(query.Order(orderBy), limit, offset)

	var rows []*models.Contract
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of contracts matching filter
func (r *ContractRepositoryImpl) Count(ctx context.Context, filter models.ContractFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.getDB(ctx).Model(&models.Contract{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any contract matches the filter
func (r *ContractRepositoryImpl) Exists(ctx context.Context, filter models.ContractFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
