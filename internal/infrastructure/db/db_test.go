package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/LockboxHQ/lockboxd/internal/core/domain"
	"github.com/LockboxHQ/lockboxd/internal/core/ports"
	"github.com/LockboxHQ/lockboxd/internal/infrastructure/db"
	"github.com/stretchr/testify/require"
)

var (
	dbs = map[string]func() (ports.RepoManager, error){
		"badger": func() (ports.RepoManager, error) {
			return db.NewService(db.ServiceConfig{
				DbType:   "badger",
				DbConfig: []any{"", nil},
			})
		},
	}

	testNow  = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testLock = func() domain.Lock {
		lock, _ := domain.NewLock(
			domain.HashPreimage("s3cr3t"), "alice", "bob",
			100, time.Hour, "ethereum", "0xdeadbeef", testNow,
		)
		return *lock
	}()
)

func TestLockRepo(t *testing.T) {
	repos, err := getRepoManagers()
	require.NoError(t, err)

	for _, v := range repos {
		t.Run(v.name, func(t *testing.T) {
			repo := v.manager.Locks()

			testAddLock(t, repo)

			testUpdateLock(t, repo)

			testGetPendingFunding(t, repo)
		})
	}
}

func testAddLock(t *testing.T, repo domain.LockRepository) {
	t.Run("add lock", func(t *testing.T) {
		ctx := context.Background()

		lock, err := repo.Get(ctx, testLock.Id)
		require.ErrorIs(t, err, domain.ErrLockNotFound)
		require.Nil(t, lock)

		err = repo.Add(ctx, testLock)
		require.NoError(t, err)

		err = repo.Add(ctx, testLock)
		require.ErrorIs(t, err, domain.ErrDuplicateLock)

		lock, err = repo.Get(ctx, testLock.Id)
		require.NoError(t, err)
		require.Equal(t, testLock, *lock)

		locks, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, locks, 1)
	})
}

func testUpdateLock(t *testing.T, repo domain.LockRepository) {
	t.Run("update lock", func(t *testing.T) {
		ctx := context.Background()

		lock, err := repo.Get(ctx, testLock.Id)
		require.NoError(t, err)

		lock.Funding = domain.FundingConfirmed
		require.NoError(t, lock.Withdraw("bob", "s3cr3t"))

		err = repo.Update(ctx, *lock)
		require.NoError(t, err)

		stored, err := repo.Get(ctx, testLock.Id)
		require.NoError(t, err)
		require.Equal(t, domain.LockWithdrawn, stored.Status)
		require.Equal(t, "s3cr3t", stored.Preimage)

		unknown := testLock
		unknown.Id = "0000000000000000000000000000000000000000000000000000000000000000"
		err = repo.Update(ctx, unknown)
		require.ErrorIs(t, err, domain.ErrLockNotFound)
	})
}

func testGetPendingFunding(t *testing.T, repo domain.LockRepository) {
	t.Run("get pending funding", func(t *testing.T) {
		ctx := context.Background()

		pending, _ := domain.NewLock(
			domain.HashPreimage("another"), "alice", "bob",
			50, time.Hour, "", "", testNow.Add(time.Second),
		)
		require.NoError(t, repo.Add(ctx, *pending))

		// cutoff before creation: nothing is stale yet
		locks, err := repo.GetPendingFunding(ctx, testNow)
		require.NoError(t, err)
		require.Empty(t, locks)

		locks, err = repo.GetPendingFunding(ctx, testNow.Add(time.Minute))
		require.NoError(t, err)
		require.Len(t, locks, 1)
		require.Equal(t, pending.Id, locks[0].Id)

		locks[0].Funding = domain.FundingConfirmed
		require.NoError(t, repo.Update(ctx, locks[0]))

		locks, err = repo.GetPendingFunding(ctx, testNow.Add(time.Minute))
		require.NoError(t, err)
		require.Empty(t, locks)
	})
}

func TestRelayerRepo(t *testing.T) {
	repos, err := getRepoManagers()
	require.NoError(t, err)

	for _, v := range repos {
		t.Run(v.name, func(t *testing.T) {
			repo := v.manager.Relayers()
			ctx := context.Background()

			ok, err := repo.Contains(ctx, "r1")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, repo.Add(ctx, "r1"))
			require.NoError(t, repo.Add(ctx, "r1"))
			require.NoError(t, repo.Add(ctx, "r2"))

			ok, err = repo.Contains(ctx, "r1")
			require.NoError(t, err)
			require.True(t, ok)

			identities, err := repo.GetAll(ctx)
			require.NoError(t, err)
			require.ElementsMatch(t, []string{"r1", "r2"}, identities)

			require.NoError(t, repo.Remove(ctx, "r1"))
			require.NoError(t, repo.Remove(ctx, "r1"))

			ok, err = repo.Contains(ctx, "r1")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestCompletionRepo(t *testing.T) {
	repos, err := getRepoManagers()
	require.NoError(t, err)

	for _, v := range repos {
		t.Run(v.name, func(t *testing.T) {
			repo := v.manager.Completions()
			ctx := context.Background()

			completion, err := domain.NewCompletion("1", "0xsource", "carol", 500, "s3cr3t", testNow)
			require.NoError(t, err)

			require.NoError(t, repo.Add(ctx, *completion))

			err = repo.Add(ctx, *completion)
			require.ErrorIs(t, err, domain.ErrAlreadyCompleted)

			stored, err := repo.Get(ctx, completion.Id)
			require.NoError(t, err)
			require.Equal(t, *completion, *stored)

			require.NoError(t, repo.Delete(ctx, completion.Id))

			_, err = repo.Get(ctx, completion.Id)
			require.Error(t, err)

			// after rollback the same attestation can be inserted again
			require.NoError(t, repo.Add(ctx, *completion))
		})
	}
}

type repoManagerDb struct {
	name    string
	manager ports.RepoManager
}

func getRepoManagers() ([]repoManagerDb, error) {
	var managers []repoManagerDb
	for dbName, factory := range dbs {
		manager, err := factory()
		if err != nil {
			return nil, err
		}
		managers = append(managers, repoManagerDb{dbName, manager})
	}
	return managers, nil
}
