package db

import (
	"fmt"
	"strings"

	"github.com/LockboxHQ/lockboxd/internal/core/domain"
	"github.com/LockboxHQ/lockboxd/internal/core/ports"
	badgerdb "github.com/LockboxHQ/lockboxd/internal/infrastructure/db/badger"
	"github.com/dgraph-io/badger/v4"
)

var (
	allowedTypes = strings.Join([]string{"badger"}, ",")
)

type ServiceConfig struct {
	DbType   string
	DbConfig []any
}

type service struct {
	lockRepo       domain.LockRepository
	relayerRepo    domain.RelayerRepository
	completionRepo domain.CompletionRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	var (
		lockRepo       domain.LockRepository
		relayerRepo    domain.RelayerRepository
		completionRepo domain.CompletionRepository
		err            error
	)
	switch config.DbType {
	case "badger":
		if len(config.DbConfig) != 2 {
			return nil, fmt.Errorf("badger db config must have 2 elements, got %d", len(config.DbConfig))
		}
		baseDir, ok := config.DbConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}
		var logger badger.Logger
		if config.DbConfig[1] != nil {
			logger, ok = config.DbConfig[1].(badger.Logger)
			if !ok {
				return nil, fmt.Errorf("invalid logger")
			}
		}
		lockRepo, err = badgerdb.NewLockRepository(baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open lock db: %s", err)
		}
		relayerRepo, err = badgerdb.NewRelayerRepository(baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open relayer db: %s", err)
		}
		completionRepo, err = badgerdb.NewCompletionRepository(baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open completion db: %s", err)
		}
	default:
		return nil, fmt.Errorf("unsupported db type %s, please select one of %s", config.DbType, allowedTypes)
	}

	return &service{
		lockRepo:       lockRepo,
		relayerRepo:    relayerRepo,
		completionRepo: completionRepo,
	}, nil
}

func (s *service) Locks() domain.LockRepository {
	return s.lockRepo
}

func (s *service) Relayers() domain.RelayerRepository {
	return s.relayerRepo
}

func (s *service) Completions() domain.CompletionRepository {
	return s.completionRepo
}

func (s *service) Close() {
	s.lockRepo.Close()
	s.relayerRepo.Close()
	s.completionRepo.Close()
}
