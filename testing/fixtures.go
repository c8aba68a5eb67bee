package testing

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var fixtureSeq atomic.Int64

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateAdmin creates an admin profile
func (tf *TestFixtures) CreateAdmin() (*models.Profile, error) {
	return tf.CreateProfile(models.RoleAdmin, nil)
}

// CreateBroker creates a broker profile; a nil code yields a broker authorized for nothing
func (tf *TestFixtures) CreateBroker(brokerCode *string) (*models.Profile, error) {
	return tf.CreateProfile(models.RoleBroker, brokerCode)
}

// CreateProfile creates a profile with the given role and broker code
func (tf *TestFixtures) CreateProfile(role models.Role, brokerCode *string) (*models.Profile, error) {
	name := fmt.Sprintf("Test %s %d", role, fixtureSeq.Add(1))
	profile := &models.Profile{
		ID:         uuid.New(),
		Role:       role,
		BrokerCode: brokerCode,
		FullName:   &name,
	}
	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test profile: %w", err)
	}
	return profile, nil
}

// ContractOptions customises CreateContract
type ContractOptions struct {
	BrokerCode    string
	StartDate     time.Time
	EndDate       time.Time
	SumInsured    decimal.Decimal
	AdditionalPct decimal.Decimal
}

// CreateContract creates a contract valid for 2026 with a 100000 EUR sum insured unless overridden
func (tf *TestFixtures) CreateContract(opts ContractOptions) (*models.Contract, error) {
	if opts.BrokerCode == "" {
		opts.BrokerCode = "BRK001"
	}
	if opts.StartDate.IsZero() {
		opts.StartDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.EndDate.IsZero() {
		opts.EndDate = time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	if opts.SumInsured.IsZero() {
		opts.SumInsured = decimal.NewFromInt(100000)
	}

	contract := &models.Contract{
		ContractNumber:         fmt.Sprintf("CTR-%04d", fixtureSeq.Add(1)),
		InsuredName:            "Acme Shipping Ltd",
		CoverageType:           "All Risks",
		StartDate:              opts.StartDate,
		EndDate:                opts.EndDate,
		BrokerCode:             opts.BrokerCode,
		SumInsured:             opts.SumInsured,
		AdditionalSIPercentage: opts.AdditionalPct,
	}
	if err := tf.DB.DB.Create(contract).Error; err != nil {
		return nil, fmt.Errorf("failed to create test contract: %w", err)
	}
	return contract, nil
}

// CreateCertificate creates a certificate against contract with the given number
func (tf *TestFixtures) CreateCertificate(contract *models.Contract, number string, createdBy uuid.UUID) (*models.Certificate, error) {
	cert := &models.Certificate{
		CertificateNumber: number,
		ContractID:        contract.ID,
		InsuredName:       contract.InsuredName,
		CargoDescription:  "Machine parts",
		DepartureCountry:  "Germany",
		ArrivalCountry:    "France",
		TransportMeans:    "Truck",
		LoadingDate:       contract.StartDate,
		IssueDate:         utils.Today(),
		Currency:          utils.EURCurrency,
		ValueLocal:        decimal.NewFromInt(1000),
		ValueEuro:         decimal.NewFromInt(1000),
		ExchangeRate:      decimal.NewFromInt(1),
		CreatedBy:         createdBy,
	}
	if err := tf.DB.DB.Create(cert).Error; err != nil {
		return nil, fmt.Errorf("failed to create test certificate: %w", err)
	}
	return cert, nil
}
