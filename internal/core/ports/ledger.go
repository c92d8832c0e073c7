package ports

import "context"

// TokenLedger is the external fungible-token ledger the daemon settles
// against. Amounts are expressed in the token's smallest unit. Every failure
// is reported through the returned error, never swallowed.
type TokenLedger interface {
	// Transfer moves amount from one identity to another.
	Transfer(ctx context.Context, from, to string, amount uint64) error
	// TransferWithNotification moves amount and attaches a note, used when
	// the daemon itself is the receiving party and needs to correlate the
	// outcome with a lock.
	TransferWithNotification(ctx context.Context, from, to string, amount uint64, note string) error
	// Mint creates amount new tokens for the given identity.
	Mint(ctx context.Context, to string, amount uint64) error
}
