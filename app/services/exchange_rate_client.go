package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirphl/cargo-certificates/utils"
	"github.com/shopspring/decimal"
)

// DefaultExchangeRateBaseURL is the public Frankfurter API
const DefaultExchangeRateBaseURL = "https://api.frankfurter.dev/v1"

// CurrencyAPIError causes
const (
	CauseNotSupported = "not supported"
	CauseUnavailable  = "unavailable"
)

// CurrencyAPIError reports a failed exchange-rate lookup with a displayable message
type CurrencyAPIError struct {
	Currency string
	Cause    string
	Message  string
	Err      error
}

func (e *CurrencyAPIError) Error() string {
	return e.Message
}

func (e *CurrencyAPIError) Unwrap() error {
	return e.Err
}

// IsCurrencyNotSupported reports whether err is a CurrencyAPIError for an unknown currency
func IsCurrencyNotSupported(err error) bool {
	var apiErr *CurrencyAPIError
	return errors.As(err, &apiErr) && apiErr.Cause == CauseNotSupported
}

// ExchangeRate is the EUR rate for one unit of a currency
type ExchangeRate struct {
	Currency string
	Rate     decimal.Decimal
	Date     string
}

// Conversion is an amount converted to EUR
type Conversion struct {
	ValueEuro    decimal.Decimal
	ExchangeRate decimal.Decimal
	RateDate     string
}

// ExchangeRateClient converts local currency amounts to EUR
type ExchangeRateClient interface {
	Currencies(ctx context.Context) (map[string]string, error)
	RateToEUR(ctx context.Context, currency string) (*ExchangeRate, error)
	ConvertToEUR(ctx context.Context, amount decimal.Decimal, currency string) (*Conversion, error)
}

// FrankfurterClient talks to a Frankfurter-compatible rate API
type FrankfurterClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	now        func() time.Time
}

func NewFrankfurterClient(baseURL string, timeout time.Duration) *FrankfurterClient {
	if baseURL == "" {
		baseURL = DefaultExchangeRateBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FrankfurterClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
		now:        utils.UTCNow,
	}
}

type frankfurterLatestResp struct {
	Amount decimal.Decimal            `json:"amount"`
	Base   string                     `json:"base"`
	Date   string                     `json:"date"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// Currencies returns the supported currency codes mapped to display names
func (c *FrankfurterClient) Currencies(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	status, err := c.getJSON(ctx, c.BaseURL+"/currencies", &out)
	if err != nil {
		return nil, &CurrencyAPIError{Cause: CauseUnavailable, Message: "Failed to fetch currencies", Err: err}
	}
	if status != http.StatusOK {
		return nil, &CurrencyAPIError{Cause: CauseUnavailable, Message: "Currency API unavailable", Err: fmt.Errorf("status %d", status)}
	}
	return out, nil
}

// RateToEUR returns how many EUR one unit of currency is worth
func (c *FrankfurterClient) RateToEUR(ctx context.Context, currency string) (*ExchangeRate, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == utils.EURCurrency {
		return &ExchangeRate{Currency: currency, Rate: decimal.NewFromInt(1), Date: utils.FormatDate(c.now())}, nil
	}

	q := url.Values{}
	q.Set("base", currency)
	q.Set("symbols", utils.EURCurrency)

	var out frankfurterLatestResp
	status, err := c.getJSON(ctx, c.BaseURL+"/latest?"+q.Encode(), &out)
	switch {
	case err != nil && status == 0:
		return nil, &CurrencyAPIError{Currency: currency, Cause: CauseUnavailable, Message: "Failed to fetch exchange rate: Network error", Err: err}
	case status == http.StatusNotFound:
		return nil, &CurrencyAPIError{Currency: currency, Cause: CauseNotSupported, Message: fmt.Sprintf("Currency %s not supported", currency)}
	case status != http.StatusOK:
		return nil, &CurrencyAPIError{Currency: currency, Cause: CauseUnavailable, Message: "Currency API unavailable", Err: fmt.Errorf("status %d", status)}
	case err != nil:
		return nil, &CurrencyAPIError{Currency: currency, Cause: CauseUnavailable, Message: "Currency API unavailable", Err: err}
	}

	rate, ok := out.Rates[utils.EURCurrency]
	if !ok || !rate.IsPositive() {
		return nil, &CurrencyAPIError{Currency: currency, Cause: CauseNotSupported, Message: fmt.Sprintf("No EUR rate available for %s", currency)}
	}

	return &ExchangeRate{Currency: currency, Rate: rate, Date: out.Date}, nil
}

// ConvertToEUR converts amount in currency to EUR, rounded half-up to cents
func (c *FrankfurterClient) ConvertToEUR(ctx context.Context, amount decimal.Decimal, currency string) (*Conversion, error) {
	return convertWith(ctx, c, amount, currency)
}

func convertWith(ctx context.Context, rates ExchangeRateClient, amount decimal.Decimal, currency string) (*Conversion, error) {
	rate, err := rates.RateToEUR(ctx, currency)
	if err != nil {
		return nil, err
	}
	return &Conversion{
		ValueEuro:    amount.Mul(rate.Rate).Round(2),
		ExchangeRate: rate.Rate,
		RateDate:     rate.Date,
	}, nil
}

// getJSON performs a GET and decodes a 200 body into out; the status is returned for non-200 replies
func (c *FrankfurterClient) getJSON(ctx context.Context, endpoint string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}
