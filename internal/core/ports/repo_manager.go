package ports

import "github.com/LockboxHQ/lockboxd/internal/core/domain"

type RepoManager interface {
	Locks() domain.LockRepository
	Relayers() domain.RelayerRepository
	Completions() domain.CompletionRepository
	Close()
}
