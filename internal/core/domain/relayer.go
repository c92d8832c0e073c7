package domain

import "context"

// RelayerRepository stores the identities allowed to assert foreign-chain
// completion events. Membership changes are idempotent.
type RelayerRepository interface {
	Add(ctx context.Context, identity string) error
	Remove(ctx context.Context, identity string) error
	Contains(ctx context.Context, identity string) (bool, error)
	GetAll(ctx context.Context) ([]string, error)
	Close()
}
