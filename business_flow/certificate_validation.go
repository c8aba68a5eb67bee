package businessflow

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/shopspring/decimal"
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	maxValueLocal   = decimal.RequireFromString(utils.MaxValueLocal)
)

// ValidateLoadingDate checks that loading falls inside the contract's inclusive validity window
func ValidateLoadingDate(contract *models.Contract, loadingDate time.Time) error {
	d := utils.DateOnly(loadingDate)
	start := utils.DateOnly(contract.StartDate)
	end := utils.DateOnly(contract.EndDate)

	if d.Before(start) || d.After(end) {
		return NewValidationErrorf("Loading date must be between %s and %s", utils.FormatDate(start), utils.FormatDate(end))
	}
	return nil
}

// ValidateValueLimit checks valueEuro against sum_insured * (1 + additional_si_percentage/100)
func ValidateValueLimit(contract *models.Contract, valueEuro decimal.Decimal) error {
	maximum := contract.MaxInsurableEUR()
	if valueEuro.GreaterThan(maximum) {
		attempted := valueEuro.StringFixed(2)
		limit := maximum.StringFixed(2)
		return &ValueLimitError{
			BusinessError: NewValidationErrorf("Value (%s EUR) exceeds contract limit (%s EUR)", attempted, limit),
			Attempted:     attempted,
			Maximum:       limit,
		}
	}
	return nil
}

// certificateFields is the normalised, mergeable content of a certificate
type certificateFields struct {
	InsuredName      string
	CargoDescription string
	DepartureCountry string
	ArrivalCountry   string
	TransportMeans   string
	LoadingDate      string
	IssueDate        string
	Currency         string
	ValueLocal       decimal.Decimal
}

type parsedCertificateFields struct {
	loadingDate time.Time
	issueDate   time.Time
}

// normalize trims free text and upper-cases the currency code
func (f *certificateFields) normalize() {
	f.InsuredName = strings.TrimSpace(f.InsuredName)
	f.CargoDescription = strings.TrimSpace(f.CargoDescription)
	f.DepartureCountry = strings.TrimSpace(f.DepartureCountry)
	f.ArrivalCountry = strings.TrimSpace(f.ArrivalCountry)
	f.TransportMeans = strings.TrimSpace(f.TransportMeans)
	f.Currency = utils.NormalizeCurrency(f.Currency)
}

func validateCertificateFields(f *certificateFields) (*parsedCertificateFields, error) {
	f.normalize()
	required := []struct {
		name  string
		value string
		max   int
	}{
		{"Insured name", f.InsuredName, 200},
		{"Cargo description", f.CargoDescription, 2000},
		{"Departure country", f.DepartureCountry, 100},
		{"Arrival country", f.ArrivalCountry, 100},
		{"Transport means", f.TransportMeans, 100},
	}
	for _, r := range required {
		if err := checkText(r.name, r.value, r.max); err != nil {
			return nil, err
		}
	}

	if !currencyPattern.MatchString(f.Currency) {
		return nil, NewValidationError("Currency must be a 3-letter ISO code")
	}
	if f.ValueLocal.IsNegative() {
		return nil, NewValidationError("Value must be zero or positive")
	}
	if f.ValueLocal.GreaterThan(maxValueLocal) {
		return nil, NewValidationErrorf("Value must not exceed %s", utils.MaxValueLocal)
	}

	loading, err := utils.ParseDate(f.LoadingDate)
	if err != nil {
		return nil, NewValidationError("Loading date must be in YYYY-MM-DD format")
	}
	issue, err := utils.ParseDate(f.IssueDate)
	if err != nil {
		return nil, NewValidationError("Issue date must be in YYYY-MM-DD format")
	}

	return &parsedCertificateFields{loadingDate: loading, issueDate: issue}, nil
}

func checkText(name, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationErrorf("%s is required", name)
	}
	if utf8.RuneCountInString(value) > max {
		return NewValidationErrorf("%s must be at most %d characters", name, max)
	}
	return nil
}

func checkOptionalText(name string, value *string, max int) error {
	if value == nil {
		return nil
	}
	if utf8.RuneCountInString(*value) > max {
		return NewValidationErrorf("%s must be at most %d characters", name, max)
	}
	return nil
}
