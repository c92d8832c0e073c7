package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/LockboxHQ/lockboxd/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const locksDir = "locks"

type lockRepository struct {
	store *badgerhold.Store
}

func NewLockRepository(baseDir string, logger badger.Logger) (domain.LockRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, locksDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock store: %s", err)
	}
	return &lockRepository{store}, nil
}

// Add stores a new lock, failing if the id was already used.
func (r *lockRepository) Add(ctx context.Context, lock domain.Lock) error {
	if err := r.store.Insert(lock.Id, lock); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateLock, lock.Id)
		}
		return err
	}
	return nil
}

func (r *lockRepository) Get(ctx context.Context, id string) (*domain.Lock, error) {
	var lock domain.Lock
	err := r.store.Get(id, &lock)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLockNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lock: %w", err)
	}
	return &lock, nil
}

func (r *lockRepository) Update(ctx context.Context, lock domain.Lock) error {
	if err := r.store.Update(lock.Id, lock); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrLockNotFound, lock.Id)
		}
		return fmt.Errorf("failed to update lock: %w", err)
	}
	return nil
}

func (r *lockRepository) GetAll(ctx context.Context) ([]domain.Lock, error) {
	var locks []domain.Lock
	if err := r.store.Find(&locks, nil); err != nil {
		return nil, fmt.Errorf("failed to get all locks: %w", err)
	}
	return locks, nil
}

// GetPendingFunding returns locks whose funding transfer has not been
// resolved and that were created before the given cutoff.
func (r *lockRepository) GetPendingFunding(
	ctx context.Context, olderThan time.Time,
) ([]domain.Lock, error) {
	var locks []domain.Lock
	query := badgerhold.Where("Funding").Eq(domain.FundingPending).
		And("CreatedAt").Lt(olderThan.UnixNano())
	if err := r.store.Find(&locks, query); err != nil {
		return nil, fmt.Errorf("failed to get pending locks: %w", err)
	}
	return locks, nil
}

func (r *lockRepository) Close() {
	// nolint:all
	r.store.Close()
}
