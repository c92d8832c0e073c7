package domain

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

type LockStatus int

const (
	LockOpen LockStatus = iota
	LockWithdrawn
	LockRefunded
)

func (s LockStatus) String() string {
	switch s {
	case LockOpen:
		return "open"
	case LockWithdrawn:
		return "withdrawn"
	case LockRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// FundingStatus tracks the second phase of lock creation: the lock record is
// stored before the ledger confirms the funding transfer, so the outcome of
// that transfer is recorded separately from the settlement status.
type FundingStatus int

const (
	FundingPending FundingStatus = iota
	FundingConfirmed
	FundingFailed
)

func (s FundingStatus) String() string {
	switch s {
	case FundingPending:
		return "pending"
	case FundingConfirmed:
		return "confirmed"
	case FundingFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lock is the durable record of one swap: the committed funds, the hash
// commitment, the two parties and the refund deadline. Settled locks are kept
// forever as the settlement audit trail.
type Lock struct {
	Id            string
	SecretHash    string
	Sender        string
	Recipient     string
	Amount        uint64
	EndTime       int64
	Status        LockStatus
	Funding       FundingStatus
	Preimage      string
	TargetChain   string
	TargetAddress string
	CreatedAt     int64
}

func NewLock(
	secretHash, sender, recipient string,
	amount uint64, timeout time.Duration,
	targetChain, targetAddress string,
	now time.Time,
) (*Lock, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be greater than 0", ErrInvalidInput)
	}
	if len(sender) == 0 || len(recipient) == 0 {
		return nil, fmt.Errorf("%w: sender and recipient are required", ErrInvalidInput)
	}
	hashBytes, err := hex.DecodeString(secretHash)
	if err != nil || len(hashBytes) != sha256.Size {
		return nil, fmt.Errorf(
			"%w: secret hash must be a %d-byte hex digest", ErrInvalidInput, sha256.Size,
		)
	}

	createdAt := now.UnixNano()
	endTime := now.Add(timeout).UnixNano()

	return &Lock{
		Id:            computeLockId(hashBytes, recipient, sender, amount, endTime, createdAt),
		SecretHash:    hex.EncodeToString(hashBytes),
		Sender:        sender,
		Recipient:     recipient,
		Amount:        amount,
		EndTime:       endTime,
		Status:        LockOpen,
		Funding:       FundingPending,
		TargetChain:   targetChain,
		TargetAddress: targetAddress,
		CreatedAt:     createdAt,
	}, nil
}

// computeLockId commits to the full lock parameters plus the creation time,
// making ids unguessable in advance and unique per invocation.
func computeLockId(
	secretHash []byte, recipient, sender string,
	amount uint64, endTime, createdAt int64,
) string {
	buf := make([]byte, 0, len(secretHash)+len(recipient)+len(sender)+24)
	buf = append(buf, secretHash...)
	buf = append(buf, recipient...)
	buf = append(buf, sender...)
	buf = binary.LittleEndian.AppendUint64(buf, amount)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(endTime))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(createdAt))
	digest := sha256.Sum256(buf)
	return hex.EncodeToString(digest[:])
}

// HashPreimage returns the hex-encoded sha256 digest of a preimage, the
// commitment form stored in Lock.SecretHash.
func HashPreimage(preimage string) string {
	digest := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(digest[:])
}

// Withdraw transitions the lock open -> withdrawn and records the revealed
// preimage. Guards are checked in a fixed order so each failure kind is
// reported distinctly, and the lock is left untouched on any failure.
func (l *Lock) Withdraw(caller, preimage string) error {
	if caller != l.Recipient {
		return fmt.Errorf("%w: only the recipient can withdraw", ErrUnauthorized)
	}
	if l.Status != LockOpen {
		return fmt.Errorf("%w: lock is %s", ErrAlreadySettled, l.Status)
	}
	if HashPreimage(preimage) != l.SecretHash {
		return ErrSecretMismatch
	}
	l.Preimage = preimage
	l.Status = LockWithdrawn
	return nil
}

// Refund transitions the lock open -> refunded once the timelock has expired.
func (l *Lock) Refund(caller string, now time.Time) error {
	if caller != l.Sender {
		return fmt.Errorf("%w: only the sender can refund", ErrUnauthorized)
	}
	if l.Status != LockOpen {
		return fmt.Errorf("%w: lock is %s", ErrAlreadySettled, l.Status)
	}
	if now.UnixNano() < l.EndTime {
		return fmt.Errorf(
			"%w: refundable at %s", ErrTimelockNotExpired, time.Unix(0, l.EndTime).UTC(),
		)
	}
	l.Status = LockRefunded
	return nil
}

func (l *Lock) Expired(now time.Time) bool {
	return now.UnixNano() >= l.EndTime
}

// LockRepository stores every lock ever created. Locks are updated in place
// on settlement or funding resolution and never deleted.
type LockRepository interface {
	Add(ctx context.Context, lock Lock) error
	Get(ctx context.Context, id string) (*Lock, error)
	Update(ctx context.Context, lock Lock) error
	GetAll(ctx context.Context) ([]Lock, error)
	GetPendingFunding(ctx context.Context, olderThan time.Time) ([]Lock, error)
	Close()
}
