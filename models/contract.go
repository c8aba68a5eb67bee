package models

import (
	"time"

	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Contract is an insurance agreement certificates are issued against
// Table: contracts
// Validity window [StartDate, EndDate] is inclusive
// Maximum insurable value is SumInsured * (1 + AdditionalSIPercentage/100)
type Contract struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractNumber         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"contract_number"`
	InsuredName            string          `gorm:"type:varchar(200);not null" json:"insured_name"`
	CoverageType           string          `gorm:"type:varchar(100);not null" json:"coverage_type"`
	StartDate              time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate                time.Time       `gorm:"type:date;not null" json:"end_date"`
	BrokerCode             string          `gorm:"type:varchar(50);not null;index" json:"broker_code"`
	SumInsured             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"sum_insured"`
	AdditionalSIPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"additional_si_percentage"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	return nil
}

// MaxInsurableEUR returns sum_insured * (1 + additional_si_percentage/100)
func (c *Contract) MaxInsurableEUR() decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(c.AdditionalSIPercentage.Div(decimal.NewFromInt(100)))
	return c.SumInsured.Mul(factor)
}

// ContractFilter represents filter criteria for contract queries
type ContractFilter struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	ContractNumber *string    `json:"contract_number,omitempty"`
	BrokerCode     *string    `json:"broker_code,omitempty"`
	ActiveOn       *time.Time `json:"active_on,omitempty"`
}
