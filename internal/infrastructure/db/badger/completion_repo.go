package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/LockboxHQ/lockboxd/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const completionsDir = "completions"

type completionRepository struct {
	store *badgerhold.Store
}

func NewCompletionRepository(baseDir string, logger badger.Logger) (domain.CompletionRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, completionsDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion store: %s", err)
	}
	return &completionRepository{store}, nil
}

// Add inserts a consumed completion event. The insert is the replay guard:
// a second completion with the same id fails before any mint is issued.
func (r *completionRepository) Add(ctx context.Context, completion domain.Completion) error {
	if err := r.store.Insert(completion.Id, completion); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyCompleted, completion.Id)
		}
		return err
	}
	return nil
}

func (r *completionRepository) Get(ctx context.Context, id string) (*domain.Completion, error) {
	var completion domain.Completion
	err := r.store.Get(id, &completion)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("completion %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}
	return &completion, nil
}

// Delete removes a completion record, used to roll back the replay guard when
// the mint it covers was never executed.
func (r *completionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(id, domain.Completion{})
}

func (r *completionRepository) Close() {
	// nolint:all
	r.store.Close()
}
