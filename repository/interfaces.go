// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uuid.UUID) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ProfileRepository defines operations for profiles
type ProfileRepository interface {
	Repository[models.Profile, models.ProfileFilter]
	ByBrokerCode(ctx context.Context, brokerCode string) (*models.Profile, error)
}

// ContractRepository defines operations for contracts
type ContractRepository interface {
	Repository[models.Contract, models.ContractFilter]
	ByContractNumber(ctx context.Context, number string) (*models.Contract, error)
}

// CertificateRepository defines operations for certificates
type CertificateRepository interface {
	Repository[models.Certificate, models.CertificateFilter]
	ByIDWithContract(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	LatestNumberWithPrefix(ctx context.Context, prefix string) (string, error)
}

// SequenceCounterRepository defines operations for named counters
type SequenceCounterRepository interface {
	// Next increments the named counter under a row lock and returns the new value.
	// seed provides the starting value the first time a counter is used.
	Next(ctx context.Context, name string, seed func(ctx context.Context) (int64, error)) (int64, error)
}
