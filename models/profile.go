// Package models contains the persisted domain entities and their query filters
package models

import (
	"time"

	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role of a profile
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleBroker Role = "broker"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleBroker
}

// Profile is the application-side record of an authenticated identity
// Table: profiles
// ID equals the subject of the identity provider token
// BrokerCode links a broker to the contracts it owns by value
type Profile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Role       Role      `gorm:"type:varchar(20);not null;default:'broker';index" json:"role"`
	BrokerCode *string   `gorm:"type:varchar(50);uniqueIndex" json:"broker_code,omitempty"`
	FullName   *string   `gorm:"type:varchar(100)" json:"full_name,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = RoleBroker
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return nil
}

// IsAdmin reports whether the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// ProfileFilter represents filter criteria for profile queries
type ProfileFilter struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	Role          *Role      `json:"role,omitempty"`
	BrokerCode    *string    `json:"broker_code,omitempty"`
	HasBrokerCode *bool      `json:"has_broker_code,omitempty"`
}
