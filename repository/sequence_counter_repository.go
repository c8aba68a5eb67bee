package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceCounterRepositoryImpl implements SequenceCounterRepository
type SequenceCounterRepositoryImpl struct {
	DB *gorm.DB
}

// NewSequenceCounterRepository creates a new sequence counter repository
func NewSequenceCounterRepository(db *gorm.DB) SequenceCounterRepository {
	return &SequenceCounterRepositoryImpl{DB: db}
}

// Next locks the counter row (SELECT ... FOR UPDATE), increments it and returns the new value.
// A missing row is inserted from seed first; concurrent first uses race on the insert and
// all but one become no-ops, so every caller ends up serialised on the same row lock.
func (r *SequenceCounterRepositoryImpl) Next(ctx context.Context, name string, seed func(ctx context.Context) (int64, error)) (int64, error) {
	var next int64
	err := WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		tx := txCtx.Value(TxContextKey).(*gorm.DB)

		lock := func(counter *models.SequenceCounter) error {
			return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).Take(counter).Error
		}

		var counter models.SequenceCounter
		err := lock(&counter)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			start := int64(0)
			if seed != nil {
				if start, err = seed(txCtx); err != nil {
					return err
				}
			}
			now := utils.UTCNow()
			row := &models.SequenceCounter{Name: name, LastValue: start, CreatedAt: now, UpdatedAt: now}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(row).Error; err != nil {
				return fmt.Errorf("failed to create counter %s: %w", name, err)
			}
			err = lock(&counter)
		}
		if err != nil {
			return fmt.Errorf("failed to lock counter %s: %w", name, err)
		}

		counter.LastValue++
		counter.UpdatedAt = utils.UTCNow()
		if err := tx.Model(&models.SequenceCounter{}).Where("name = ?", name).
			Updates(map[string]any{"last_value": counter.LastValue, "updated_at": counter.UpdatedAt}).Error; err != nil {
			return fmt.Errorf("failed to advance counter %s: %w", name, err)
		}

		next = counter.LastValue
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
