package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/repository"
	testingutil "github.com/amirphl/cargo-certificates/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProfileRepository(t *testing.T) {
	err := testingutil.TestWithDB(t.Name(), func(testDB *testingutil.TestDB) error {
		repo := repository.NewProfileRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		admin, err := fixtures.CreateAdmin()
		require.NoError(t, err)
		broker, err := fixtures.CreateBroker(strPtr("BRK001"))
		require.NoError(t, err)
		_, err = fixtures.CreateBroker(nil)
		require.NoError(t, err)

		t.Run("ByID", func(t *testing.T) {
			p, err := repo.ByID(ctx, admin.ID)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, models.RoleAdmin, p.Role)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			p, err := repo.ByID(ctx, uuid.New())
			assert.NoError(t, err)
			assert.Nil(t, p)
		})

		t.Run("ByBrokerCode", func(t *testing.T) {
			p, err := repo.ByBrokerCode(ctx, "BRK001")
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, broker.ID, p.ID)

			p, err = repo.ByBrokerCode(ctx, "NOPE")
			require.NoError(t, err)
			assert.Nil(t, p)
		})

		t.Run("FilterByRole", func(t *testing.T) {
			role := models.RoleBroker
			rows, err := repo.ByFilter(ctx, models.ProfileFilter{Role: &role}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 2)

			count, err := repo.Count(ctx, models.ProfileFilter{Role: &role})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("FilterByBrokerCodePresence", func(t *testing.T) {
			has := false
			rows, err := repo.ByFilter(ctx, models.ProfileFilter{HasBrokerCode: &has}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 2)
		})

		t.Run("DuplicateBrokerCode", func(t *testing.T) {
			dup := &models.Profile{ID: uuid.New(), Role: models.RoleBroker, BrokerCode: strPtr("BRK001")}
			err := repo.Save(ctx, dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("Update", func(t *testing.T) {
			name := "Renamed Broker"
			broker.FullName = &name
			require.NoError(t, repo.Update(ctx, broker))

			p, err := repo.ByID(ctx, broker.ID)
			require.NoError(t, err)
			require.NotNil(t, p.FullName)
			assert.Equal(t, name, *p.FullName)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestContractRepository(t *testing.T) {
	err := testingutil.TestWithDB(t.Name(), func(testDB *testingutil.TestDB) error {
		repo := repository.NewContractRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		first, err := fixtures.CreateContract(testingutil.ContractOptions{BrokerCode: "BRK001"})
		require.NoError(t, err)
		_, err = fixtures.CreateContract(testingutil.ContractOptions{BrokerCode: "BRK002"})
		require.NoError(t, err)

		t.Run("ByContractNumber", func(t *testing.T) {
			c, err := repo.ByContractNumber(ctx, first.ContractNumber)
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Equal(t, first.ID, c.ID)
			assert.True(t, first.SumInsured.Equal(c.SumInsured))
		})

		t.Run("FilterByBroker", func(t *testing.T) {
			code := "BRK002"
			rows, err := repo.ByFilter(ctx, models.ContractFilter{BrokerCode: &code}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "BRK002", rows[0].BrokerCode)
		})

		t.Run("Pagination", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.ContractFilter{}, "contract_number ASC", 1, 1)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})

		t.Run("DuplicateNumber", func(t *testing.T) {
			dup := *first
			dup.ID = uuid.Nil
			err := repo.Save(ctx, &dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("Delete", func(t *testing.T) {
			extra, err := fixtures.CreateContract(testingutil.ContractOptions{BrokerCode: "BRK003"})
			require.NoError(t, err)
			require.NoError(t, repo.Delete(ctx, extra.ID))

			c, err := repo.ByID(ctx, extra.ID)
			require.NoError(t, err)
			assert.Nil(t, c)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCertificateRepository(t *testing.T) {
	err := testingutil.TestWithDB(t.Name(), func(testDB *testingutil.TestDB) error {
		repo := repository.NewCertificateRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		broker, err := fixtures.CreateBroker(strPtr("BRK001"))
		require.NoError(t, err)
		own, err := fixtures.CreateContract(testingutil.ContractOptions{BrokerCode: "BRK001"})
		require.NoError(t, err)
		other, err := fixtures.CreateContract(testingutil.ContractOptions{BrokerCode: "BRK002"})
		require.NoError(t, err)

		c1, err := fixtures.CreateCertificate(own, "CERT-2026-0001", broker.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateCertificate(own, "CERT-2026-0010", broker.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateCertificate(other, "CERT-2025-0042", broker.ID)
		require.NoError(t, err)

		t.Run("ByIDWithContract", func(t *testing.T) {
			c, err := repo.ByIDWithContract(ctx, c1.ID)
			require.NoError(t, err)
			require.NotNil(t, c)
			require.NotNil(t, c.Contract)
			assert.Equal(t, own.ContractNumber, c.Contract.ContractNumber)

			c, err = repo.ByIDWithContract(ctx, uuid.New())
			require.NoError(t, err)
			assert.Nil(t, c)
		})

		t.Run("LatestNumberWithPrefix", func(t *testing.T) {
			n, err := repo.LatestNumberWithPrefix(ctx, "CERT-2026-")
			require.NoError(t, err)
			assert.Equal(t, "CERT-2026-0010", n)

			n, err = repo.LatestNumberWithPrefix(ctx, "CERT-2027-")
			require.NoError(t, err)
			assert.Empty(t, n)
		})

		t.Run("FilterByBrokerCode", func(t *testing.T) {
			code := "BRK001"
			rows, err := repo.ByFilter(ctx, models.CertificateFilter{BrokerCode: &code}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 2)
			for _, row := range rows {
				require.NotNil(t, row.Contract)
				assert.Equal(t, "BRK001", row.Contract.BrokerCode)
			}

			count, err := repo.Count(ctx, models.CertificateFilter{BrokerCode: &code})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("ExistsForContract", func(t *testing.T) {
			exists, err := repo.Exists(ctx, models.CertificateFilter{ContractID: &other.ID})
			require.NoError(t, err)
			assert.True(t, exists)

			missing := uuid.New()
			exists, err = repo.Exists(ctx, models.CertificateFilter{ContractID: &missing})
			require.NoError(t, err)
			assert.False(t, exists)
		})

		t.Run("DuplicateNumber", func(t *testing.T) {
			_, err := fixtures.CreateCertificate(own, "CERT-2026-0001", broker.ID)
			require.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestWithTransaction(t *testing.T) {
	err := testingutil.TestWithDB(t.Name(), func(testDB *testingutil.TestDB) error {
		repo := repository.NewProfileRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("RollsBackOnError", func(t *testing.T) {
			id := uuid.New()
			boom := errors.New("boom")
			err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				require.NoError(t, repo.Save(txCtx, &models.Profile{ID: id}))
				return boom
			})
			assert.ErrorIs(t, err, boom)

			p, err := repo.ByID(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, p)
		})

		t.Run("Commits", func(t *testing.T) {
			id := uuid.New()
			err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				return repo.Save(txCtx, &models.Profile{ID: id})
			})
			require.NoError(t, err)

			p, err := repo.ByID(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, models.RoleBroker, p.Role)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSequenceCounterRepository(t *testing.T) {
	err := testingutil.TestWithDB(t.Name(), func(testDB *testingutil.TestDB) error {
		repo := repository.NewSequenceCounterRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("SeedsOnFirstUse", func(t *testing.T) {
			seeded := 0
			seed := func(ctx context.Context) (int64, error) {
				seeded++
				return 41, nil
			}

			n, err := repo.Next(ctx, "certificate:2026", seed)
			require.NoError(t, err)
			assert.Equal(t, int64(42), n)

			n, err = repo.Next(ctx, "certificate:2026", seed)
			require.NoError(t, err)
			assert.Equal(t, int64(43), n)
			assert.Equal(t, 1, seeded)
		})

		t.Run("CountersAreIndependent", func(t *testing.T) {
			n, err := repo.Next(ctx, "certificate:2027", nil)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})

		t.Run("Concurrent", func(t *testing.T) {
			const workers = 10
			var wg sync.WaitGroup
			results := make(chan int64, workers)
			for range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					n, err := repo.Next(ctx, "certificate:2030", nil)
					if err == nil {
						results <- n
					}
				}()
			}
			wg.Wait()
			close(results)

			seen := map[int64]bool{}
			for n := range results {
				assert.False(t, seen[n], "duplicate value %d", n)
				seen[n] = true
			}
			assert.Len(t, seen, workers)
		})

		t.Run("ConcurrentFirstUseWithSeed", func(t *testing.T) {
			const workers = 8
			seed := func(ctx context.Context) (int64, error) { return 99, nil }

			var wg sync.WaitGroup
			results := make(chan int64, workers)
			errs := make(chan error, workers)
			for range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					n, err := repo.Next(ctx, "certificate:2031", seed)
					if err != nil {
						errs <- err
						return
					}
					results <- n
				}()
			}
			wg.Wait()
			close(results)
			close(errs)

			for err := range errs {
				assert.NoError(t, err)
			}
			seen := map[int64]bool{}
			for n := range results {
				assert.GreaterOrEqual(t, n, int64(100))
				assert.LessOrEqual(t, n, int64(99+workers))
				assert.False(t, seen[n], "duplicate value %d", n)
				seen[n] = true
			}
			assert.Len(t, seen, workers)
		})

		t.Run("ExistingRowIsNotReseeded", func(t *testing.T) {
			require.NoError(t, testDB.DB.Create(&models.SequenceCounter{Name: "certificate:2032", LastValue: 7}).Error)

			n, err := repo.Next(ctx, "certificate:2032", func(ctx context.Context) (int64, error) { return 500, nil })
			require.NoError(t, err)
			assert.Equal(t, int64(8), n)
		})

		return nil
	})
	require.NoError(t, err)
}
