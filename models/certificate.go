package models

import (
	"time"

	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Certificate is a cargo shipment's insurance instrument issued against a contract
// Table: certificates
// CertificateNumber is CERT-<year>-<NNNN> and never changes once assigned
type Certificate struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CertificateNumber string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"certificate_number"`
	ContractID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	InsuredName       string          `gorm:"type:varchar(200);not null" json:"insured_name"`
	CargoDescription  string          `gorm:"type:text;not null" json:"cargo_description"`
	DepartureCountry  string          `gorm:"type:varchar(100);not null" json:"departure_country"`
	ArrivalCountry    string          `gorm:"type:varchar(100);not null" json:"arrival_country"`
	TransportMeans    string          `gorm:"type:varchar(100);not null" json:"transport_means"`
	LoadingDate       time.Time       `gorm:"type:date;not null" json:"loading_date"`
	IssueDate         time.Time       `gorm:"type:date;not null" json:"issue_date"`
	Currency          string          `gorm:"type:varchar(3);not null" json:"currency"`
	ValueLocal        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"value_local"`
	ValueEuro         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"value_euro"`
	ExchangeRate      decimal.Decimal `gorm:"type:decimal(15,6);not null" json:"exchange_rate"`
	CreatedBy         uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Relations
	Contract *Contract `gorm:"foreignKey:ContractID;references:ID;constraint:OnDelete:RESTRICT" json:"contract,omitempty"`
}

func (Certificate) TableName() string { return "certificates" }

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
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

// CertificateFilter represents filter criteria for certificate queries
type CertificateFilter struct {
	ID                *uuid.UUID `json:"id,omitempty"`
	ContractID        *uuid.UUID `json:"contract_id,omitempty"`
	BrokerCode        *string    `json:"broker_code,omitempty"`
	CreatedBy         *uuid.UUID `json:"created_by,omitempty"`
	LoadingDateAfter  *time.Time `json:"loading_date_after,omitempty"`
	LoadingDateBefore *time.Time `json:"loading_date_before,omitempty"`
}
