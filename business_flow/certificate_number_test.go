package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirphl/cargo-certificates/repository"
	testingutil "github.com/amirphl/cargo-certificates/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestFormatAndParseCertificateNumber(t *testing.T) {
	assert.Equal(t, "CERT-2026-", CertificateNumberPrefix(2026))
	assert.Equal(t, "CERT-2026-0001", FormatCertificateNumber(2026, 1))
	assert.Equal(t, "CERT-2026-0042", FormatCertificateNumber(2026, 42))
	assert.Equal(t, "CERT-2026-12345", FormatCertificateNumber(2026, 12345))

	seq, ok := ParseCertificateSequence("CERT-2026-0042", 2026)
	assert.True(t, ok)
	assert.Equal(t, int64(42), seq)

	_, ok = ParseCertificateSequence("CERT-2025-0042", 2026)
	assert.False(t, ok)
	_, ok = ParseCertificateSequence("CERT-2026-ABCD", 2026)
	assert.False(t, ok)
}

func TestCertificateNumberAllocators(t *testing.T) {
	for _, strategy := range []string{NumberStrategyScan, NumberStrategyCounter} {
		t.Run(strategy, func(t *testing.T) {
			err := testingutil.TestWithDB(t.Name(), func(tdb *testingutil.TestDB) error {
				fx := testingutil.NewTestFixtures(tdb)
				ctx := context.Background()
				certRepo := repository.NewCertificateRepository(tdb.DB)
				allocator := NewCertificateNumberAllocator(strategy, certRepo, repository.NewSequenceCounterRepository(tdb.DB))

				t.Run("first of the year", func(t *testing.T) {
					n, err := allocator.Next(ctx, 2026)
					require.NoError(t, err)
					assert.Equal(t, "CERT-2026-0001", n)
				})

				// drop the counter row so the next allocation seeds from the fixtures
				require.NoError(t, tdb.ClearAllTables())
				admin, err := fx.CreateAdmin()
				require.NoError(t, err)
				contract, err := fx.CreateContract(testingutil.ContractOptions{})
				require.NoError(t, err)

				// previous year's high number does not carry over
				_, err = fx.CreateCertificate(contract, "CERT-2025-0950", admin.ID)
				require.NoError(t, err)
				_, err = fx.CreateCertificate(contract, "CERT-2026-0007", admin.ID)
				require.NoError(t, err)
				_, err = fx.CreateCertificate(contract, "CERT-2026-0003", admin.ID)
				require.NoError(t, err)

				t.Run("continues after the greatest", func(t *testing.T) {
					n, err := allocator.Next(ctx, 2026)
					require.NoError(t, err)
					assert.Equal(t, "CERT-2026-0008", n)

					_, err = fx.CreateCertificate(contract, n, admin.ID)
					require.NoError(t, err)

					n, err = allocator.Next(ctx, 2026)
					require.NoError(t, err)
					assert.Equal(t, "CERT-2026-0009", n)
				})

				t.Run("new year starts at one", func(t *testing.T) {
					n, err := allocator.Next(ctx, 2027)
					require.NoError(t, err)
					assert.Equal(t, "CERT-2027-0001", n)
				})

				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestCounterAllocatorNeverRepeats(t *testing.T) {
	err := testingutil.TestWithDB(t.Name(), func(tdb *testingutil.TestDB) error {
		allocator := NewCertificateNumberAllocator(NumberStrategyCounter,
			repository.NewCertificateRepository(tdb.DB), repository.NewSequenceCounterRepository(tdb.DB))

		seen := map[string]bool{}
		for i := 0; i < 25; i++ {
			n, err := allocator.Next(context.Background(), 2026)
			require.NoError(t, err)
			assert.False(t, seen[n], "duplicate number %s", n)
			seen[n] = true
		}
		assert.True(t, seen["CERT-2026-0025"])
		return nil
	})
	require.NoError(t, err)
}

func TestScanAllocatorIgnoresUnparseableNumbers(t *testing.T) {
	err := testingutil.TestWithDB(t.Name(), func(tdb *testingutil.TestDB) error {
		fx := testingutil.NewTestFixtures(tdb)
		admin, err := fx.CreateAdmin()
		require.NoError(t, err)
		contract, err := fx.CreateContract(testingutil.ContractOptions{})
		require.NoError(t, err)
		_, err = fx.CreateCertificate(contract, "CERT-2026-MANUAL", admin.ID)
		require.NoError(t, err)

		allocator := NewCertificateNumberAllocator(NumberStrategyScan, repository.NewCertificateRepository(tdb.DB), nil)
		n, err := allocator.Next(context.Background(), 2026)
		require.NoError(t, err)
		assert.Equal(t, "CERT-2026-0001", n)
		return nil
	})
	require.NoError(t, err)
}

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return db, mock
}

func TestAllocatorReadFailure(t *testing.T) {
	t.Run("scan", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectQuery(`SELECT "certificate_number" FROM "certificates"`).WillReturnError(errors.New("connection reset"))

		allocator := NewCertificateNumberAllocator(NumberStrategyScan, repository.NewCertificateRepository(db), nil)
		_, err := allocator.Next(context.Background(), 2026)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCertificateNumberGeneration)

		be, ok := AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, CodeCertificateNumberGeneration, be.Code)
		assert.Equal(t, "Failed to generate certificate number", be.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("counter", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "sequence_counters"`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		allocator := NewCertificateNumberAllocator(NumberStrategyCounter,
			repository.NewCertificateRepository(db), repository.NewSequenceCounterRepository(db))
		_, err := allocator.Next(context.Background(), 2026)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCertificateNumberGeneration)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
