package repository

import (
	"context"

	"github.com/amirphl/cargo-certificates/models"
	"gorm.io/gorm"
)

// ProfileRepositoryImpl implements ProfileRepository interface
type ProfileRepositoryImpl struct {
	*BaseRepository[models.Profile, models.ProfileFilter]
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Profile, models.ProfileFilter](db),
	}
}

// ByBrokerCode retrieves the profile owning a broker code
func (r *ProfileRepositoryImpl) ByBrokerCode(ctx context.Context, brokerCode string) (*models.Profile, error) {
	rows, err := r.ByFilter(ctx, models.ProfileFilter{BrokerCode: &brokerCode}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ProfileRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProfileFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.BrokerCode != nil {
		query = query.Where("broker_code = ?", *filter.BrokerCode)
	}
	if filter.HasBrokerCode != nil {
		if *filter.HasBrokerCode {
			query = query.Where("broker_code IS NOT NULL")
		} else {
			query = query.Where("broker_code IS NULL")
		}
	}
	return query
}

// ByFilter retrieves profiles based on filter criteria
func (r *ProfileRepositoryImpl) ByFilter(ctx context.Context, filter models.ProfileFilter, orderBy string, limit, offset int) ([]*models.Profile, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Profile{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = paginate(query.Order(orderBy), limit, offset)

	var rows []*models.Profile
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of profiles matching filter
func (r *ProfileRepositoryImpl) Count(ctx context.Context, filter models.ProfileFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.getDB(ctx).Model(&models.Profile{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any profile matches the filter
func (r *ProfileRepositoryImpl) Exists(ctx context.Context, filter models.ProfileFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
