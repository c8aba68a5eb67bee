// Package utils provides utility functions for the application.
package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var uuidV4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func ToPtr[T any](v T) *T {
	return &v
}

// IsUUIDv4 reports whether s is a canonical version 4 UUID (case-insensitive)
func IsUUIDv4(s string) bool {
	return uuidV4Pattern.MatchString(strings.ToLower(s))
}

// ParseUUID parses a UUID string
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// NormalizeCurrency trims and upper-cases a currency code
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NilIfEmpty returns nil for blank strings and a trimmed pointer otherwise
func NilIfEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
