package dto

import "github.com/shopspring/decimal"

// CurrencyItem is a supported currency code and its display name
type CurrencyItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ConvertCurrencyRequest asks for an amount converted to EUR
type ConvertCurrencyRequest struct {
	Amount   string `query:"amount" validate:"required,numeric"`
	Currency string `query:"currency" validate:"required,len=3,alpha"`
}

// ConvertCurrencyResponse is an EUR conversion result
type ConvertCurrencyResponse struct {
	Currency     string          `json:"currency"`
	Amount       decimal.Decimal `json:"amount"`
	ValueEuro    decimal.Decimal `json:"value_euro"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	RateDate     string          `json:"rate_date"`
}
