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

const relayersDir = "relayers"

type relayerRepository struct {
	store *badgerhold.Store
}

func NewRelayerRepository(baseDir string, logger badger.Logger) (domain.RelayerRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, relayersDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open relayer store: %s", err)
	}
	return &relayerRepository{store}, nil
}

// Add registers an identity as relayer. Adding an existing relayer is a no-op.
func (r *relayerRepository) Add(ctx context.Context, identity string) error {
	if err := r.store.Upsert(identity, relayerData{Identity: identity}); err != nil {
		return fmt.Errorf("failed to add relayer: %w", err)
	}
	return nil
}

// Remove unregisters an identity. Removing an unknown relayer is a no-op.
func (r *relayerRepository) Remove(ctx context.Context, identity string) error {
	err := r.store.Delete(identity, relayerData{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to remove relayer: %w", err)
	}
	return nil
}

func (r *relayerRepository) Contains(ctx context.Context, identity string) (bool, error) {
	var data relayerData
	err := r.store.Get(identity, &data)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get relayer: %w", err)
	}
	return true, nil
}

func (r *relayerRepository) GetAll(ctx context.Context) ([]string, error) {
	var dataList []relayerData
	if err := r.store.Find(&dataList, nil); err != nil {
		return nil, fmt.Errorf("failed to get all relayers: %w", err)
	}

	identities := make([]string, 0, len(dataList))
	for _, data := range dataList {
		identities = append(identities, data.Identity)
	}
	return identities, nil
}

func (r *relayerRepository) Close() {
	// nolint:all
	r.store.Close()
}

type relayerData struct {
	Identity string
}
