package utils

import (
	"time"
)

// Date layouts used across the API and documents
const (
	// DateLayout is the wire format for calendar dates (YYYY-MM-DD)
	DateLayout = "2006-01-02"

	// LongDateLayout is the human readable date used on generated documents
	LongDateLayout = "02 January 2006"
)

// Currency constants
const (
	EURCurrency = "EUR"

	// MaxValueLocal is the largest accepted local-currency value
	MaxValueLocal = "999999999999.99"

	// CurrencyListTTL is how long the supported-currency list is cached
	CurrencyListTTL = time.Hour
)

// Certificate numbering
const (
	CertificateNumberPrefix = "CERT"

	// CertificateSequenceWidth is the zero padded width of the yearly sequence
	CertificateSequenceWidth = 4
)

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// ContextKey namespaces request-scoped values stored in a context.Context
type ContextKey string

// Request context keys
const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)

// RequestTimeout bounds the work a single API request may do
const RequestTimeout = 30 * time.Second
