package services

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePDFInput() (*models.Certificate, *models.Contract) {
	contract := &models.Contract{
		ID:                     uuid.New(),
		ContractNumber:         "CTR-2026-001",
		InsuredName:            "Acme Shipping Ltd",
		CoverageType:           "All Risks",
		StartDate:              time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:                time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		BrokerCode:             "BRK001",
		SumInsured:             decimal.NewFromInt(500000),
		AdditionalSIPercentage: decimal.NewFromInt(10),
	}
	cert := &models.Certificate{
		ID:                uuid.New(),
		CertificateNumber: "CERT-2026-0001",
		ContractID:        contract.ID,
		InsuredName:       "Acme Shipping Ltd",
		CargoDescription:  "Industrial machine parts",
		DepartureCountry:  "Germany",
		ArrivalCountry:    "France",
		TransportMeans:    "Truck",
		LoadingDate:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		IssueDate:         time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Currency:          "USD",
		ValueLocal:        decimal.RequireFromString("10000"),
		ValueEuro:         decimal.RequireFromString("9234.56"),
		ExchangeRate:      decimal.RequireFromString("0.923456"),
	}
	return cert, contract
}

func fixedRenderer() *CertificatePDFRenderer {
	return NewCertificatePDFRendererWithClock(func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})
}

func assertPDF(t *testing.T, out []byte) {
	t.Helper()
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output must start with %PDF")
	assert.Contains(t, string(bytes.TrimSpace(out[len(out)-16:])), "%%EOF")
}

func TestCertificatePDFRenderer_Render(t *testing.T) {
	cert, contract := samplePDFInput()

	tests := []struct {
		name   string
		mutate func(c *models.Certificate, k *models.Contract)
	}{
		{"standard certificate", func(c *models.Certificate, k *models.Contract) {}},
		{"500 character description", func(c *models.Certificate, k *models.Contract) {
			c.CargoDescription = strings.Repeat("Pallets of spare parts. ", 21)[:500]
		}},
		{"maximum description spanning pages", func(c *models.Certificate, k *models.Contract) {
			c.CargoDescription = strings.Repeat("Containerised frozen seafood, ", 67)[:2000]
		}},
		{"non-ascii names", func(c *models.Certificate, k *models.Contract) {
			c.InsuredName = "Müller & Søn Logistik GmbH 株式会社"
			c.DepartureCountry = "Côte d'Ivoire"
			c.ArrivalCountry = "España"
		}},
		{"large values", func(c *models.Certificate, k *models.Contract) {
			c.ValueLocal = decimal.RequireFromString("999999999999.99")
			c.ValueEuro = decimal.RequireFromString("923456000000.00")
			k.SumInsured = decimal.RequireFromString("9999999999999.99")
			k.AdditionalSIPercentage = decimal.RequireFromString("999.99")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, k := *cert, *contract
			tt.mutate(&c, &k)

			out, err := fixedRenderer().Render(&c, &k)
			require.NoError(t, err)
			assertPDF(t, out)
		})
	}
}

func TestCertificatePDFRenderer_RequiresInput(t *testing.T) {
	cert, contract := samplePDFInput()
	_, err := fixedRenderer().Render(nil, contract)
	assert.Error(t, err)
	_, err = fixedRenderer().Render(cert, nil)
	assert.Error(t, err)
}

func TestCertificatePDFRenderer_Concurrent(t *testing.T) {
	renderer := fixedRenderer()
	cert, contract := samplePDFInput()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := renderer.Render(cert, contract)
			if err == nil && !bytes.HasPrefix(out, []byte("%PDF")) {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
