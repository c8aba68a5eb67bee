package businessflow

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/app/services"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/repository"
	testingutil "github.com/amirphl/cargo-certificates/testing"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// stubRates converts with a fixed rate and counts lookups
type stubRates struct {
	mu    sync.Mutex
	rate  decimal.Decimal
	err   error
	calls int
}

func (s *stubRates) Currencies(ctx context.Context) (map[string]string, error) {
	return map[string]string{"EUR": "Euro", "USD": "United States Dollar"}, nil
}

func (s *stubRates) RateToEUR(ctx context.Context, currency string) (*services.ExchangeRate, error) {
	if currency == utils.EURCurrency {
		return &services.ExchangeRate{Currency: currency, Rate: decimal.NewFromInt(1), Date: utils.FormatDate(fixedNow)}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &services.ExchangeRate{Currency: currency, Rate: s.rate, Date: "2026-06-12"}, nil
}

func (s *stubRates) ConvertToEUR(ctx context.Context, amount decimal.Decimal, currency string) (*services.Conversion, error) {
	rate, err := s.RateToEUR(ctx, currency)
	if err != nil {
		return nil, err
	}
	return &services.Conversion{ValueEuro: amount.Mul(rate.Rate).Round(2), ExchangeRate: rate.Rate, RateDate: rate.Date}, nil
}

func (s *stubRates) lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// memoryArchive is an in-memory storage.Driver
type memoryArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	failing bool
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{objects: map[string][]byte{}}
}

func (m *memoryArchive) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	if m.failing {
		return errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryArchive) Delete(ctx context.Context, key string) error {
	if m.failing {
		return errors.New("bucket unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryArchive) object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// fixedAllocator always hands out the same number
type fixedAllocator struct{ number string }

func (a fixedAllocator) Next(ctx context.Context, year int) (string, error) { return a.number, nil }

type flowEnv struct {
	tdb          *testingutil.TestDB
	fx           *testingutil.TestFixtures
	certRepo     repository.CertificateRepository
	contractRepo repository.ContractRepository
	profileRepo  repository.ProfileRepository
	rates        *stubRates
	archive      *memoryArchive
	certFlow     *CertificateFlowImpl

	admin    *Identity
	broker   *Identity
	other    *Identity
	codeless *Identity

	contract        *models.Contract // BRK001, 2026, 100000 + 10%
	foreignContract *models.Contract // BRK002
}

func newFlowEnv(t *testing.T) *flowEnv {
	t.Helper()

	tdb, err := testingutil.SetupTestDB(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })

	env := &flowEnv{
		tdb:          tdb,
		fx:           testingutil.NewTestFixtures(tdb),
		certRepo:     repository.NewCertificateRepository(tdb.DB),
		contractRepo: repository.NewContractRepository(tdb.DB),
		profileRepo:  repository.NewProfileRepository(tdb.DB),
		rates:        &stubRates{rate: decimal.RequireFromString("0.92")},
		archive:      newMemoryArchive(),
	}

	env.certFlow = &CertificateFlowImpl{
		certRepo:     env.certRepo,
		contractRepo: env.contractRepo,
		allocator:    NewCertificateNumberAllocator(NumberStrategyScan, env.certRepo, nil),
		rates:        env.rates,
		renderer:     services.NewCertificatePDFRendererWithClock(clock),
		archive:      env.archive,
		now:          clock,
	}

	env.admin = env.identity(t, models.RoleAdmin, nil)
	env.broker = env.identity(t, models.RoleBroker, utils.ToPtr("BRK001"))
	env.other = env.identity(t, models.RoleBroker, utils.ToPtr("BRK002"))
	env.codeless = env.identity(t, models.RoleBroker, nil)

	env.contract, err = env.fx.CreateContract(testingutil.ContractOptions{
		BrokerCode:    "BRK001",
		AdditionalPct: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	env.foreignContract, err = env.fx.CreateContract(testingutil.ContractOptions{BrokerCode: "BRK002"})
	require.NoError(t, err)

	return env
}

func (e *flowEnv) identity(t *testing.T, role models.Role, code *string) *Identity {
	t.Helper()
	p, err := e.fx.CreateProfile(role, code)
	require.NoError(t, err)
	return NewIdentity(p)
}

func (e *flowEnv) createRequest(contract *models.Contract) *dto.CreateCertificateRequest {
	return &dto.CreateCertificateRequest{
		ContractID:       contract.ID.String(),
		InsuredName:      "Acme Shipping Ltd",
		CargoDescription: "20 pallets of machine parts",
		DepartureCountry: "Germany",
		ArrivalCountry:   "France",
		TransportMeans:   "Truck",
		LoadingDate:      "2026-03-01",
		Currency:         "EUR",
		ValueLocal:       decimal.NewFromInt(1000),
	}
}

func businessCode(t *testing.T, err error) string {
	t.Helper()
	be, ok := AsBusinessError(err)
	require.True(t, ok, "expected a BusinessError, got %v", err)
	return be.Code
}
