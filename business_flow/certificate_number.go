package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirphl/cargo-certificates/repository"
	"github.com/amirphl/cargo-certificates/utils"
)

// Certificate number allocation strategies
const (
	NumberStrategyScan    = "scan"
	NumberStrategyCounter = "counter"
)

// CertificateNumberAllocator produces the next CERT-<year>-<NNNN> number
type CertificateNumberAllocator interface {
	Next(ctx context.Context, year int) (string, error)
}

// NewCertificateNumberAllocator picks the allocator for strategy, defaulting to scan
func NewCertificateNumberAllocator(strategy string, certRepo repository.CertificateRepository, counterRepo repository.SequenceCounterRepository) CertificateNumberAllocator {
	scan := &ScanNumberAllocator{certRepo: certRepo}
	if strategy == NumberStrategyCounter && counterRepo != nil {
		return &CounterNumberAllocator{counters: counterRepo, scan: scan}
	}
	return scan
}

// CertificateNumberPrefix returns "CERT-<year>-"
func CertificateNumberPrefix(year int) string {
	return fmt.Sprintf("%s-%d-", utils.CertificateNumberPrefix, year)
}

// FormatCertificateNumber zero pads seq to four digits
func FormatCertificateNumber(year int, seq int64) string {
	return fmt.Sprintf("%s%0*d", CertificateNumberPrefix(year), utils.CertificateSequenceWidth, seq)
}

// ParseCertificateSequence extracts the sequence from a number carrying the year's prefix
func ParseCertificateSequence(number string, year int) (int64, bool) {
	prefix := CertificateNumberPrefix(year)
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(number, prefix), 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

func numberGenerationError(err error) error {
	return NewBusinessError(CodeCertificateNumberGeneration, "Failed to generate certificate number", errors.Join(ErrCertificateNumberGeneration, err))
}

// ScanNumberAllocator reads the greatest existing number for the year and increments it.
// Two concurrent callers can compute the same number; the unique index on certificate_number
// turns that into a conflict at insert time.
type ScanNumberAllocator struct {
	certRepo repository.CertificateRepository
}

func (a *ScanNumberAllocator) Next(ctx context.Context, year int) (string, error) {
	last, err := a.lastSequence(ctx, year)
	if err != nil {
		return "", numberGenerationError(err)
	}
	return FormatCertificateNumber(year, last+1), nil
}

// lastSequence returns the year's highest sequence in use, 0 when none or unparseable
func (a *ScanNumberAllocator) lastSequence(ctx context.Context, year int) (int64, error) {
	latest, err := a.certRepo.LatestNumberWithPrefix(ctx, CertificateNumberPrefix(year))
	if err != nil {
		return 0, err
	}
	if latest == "" {
		return 0, nil
	}
	seq, ok := ParseCertificateSequence(latest, year)
	if !ok {
		return 0, nil
	}
	return seq, nil
}

// CounterNumberAllocator increments a per-year counter row under a row lock, so concurrent
// callers never receive the same number. The counter is seeded from existing certificates.
type CounterNumberAllocator struct {
	counters repository.SequenceCounterRepository
	scan     *ScanNumberAllocator
}

func (a *CounterNumberAllocator) Next(ctx context.Context, year int) (string, error) {
	name := fmt.Sprintf("certificate:%d", year)
	seq, err := a.counters.Next(ctx, name, func(ctx context.Context) (int64, error) {
		return a.scan.lastSequence(ctx, year)
	})
	if err != nil {
		return "", numberGenerationError(err)
	}
	return FormatCertificateNumber(year, seq), nil
}
