package domain

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Completion records one relayer-attested cross-chain settlement. Its id is a
// digest of the full attestation, so resubmitting the same attestation maps
// to the same id and is rejected by the consumed-event set.
type Completion struct {
	Id            string
	SourceChain   string
	SourceAddress string
	Destination   string
	Amount        uint64
	Preimage      string
	CompletedAt   int64
}

func NewCompletion(
	sourceChain, sourceAddress, destination string,
	amount uint64, preimage string,
	now time.Time,
) (*Completion, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}
	if len(destination) == 0 {
		return nil, fmt.Errorf("%w: destination is required", ErrInvalidInput)
	}

	return &Completion{
		Id:            computeCompletionId(sourceChain, sourceAddress, destination, amount, preimage),
		SourceChain:   sourceChain,
		SourceAddress: sourceAddress,
		Destination:   destination,
		Amount:        amount,
		Preimage:      preimage,
		CompletedAt:   now.UnixNano(),
	}, nil
}

func computeCompletionId(
	sourceChain, sourceAddress, destination string, amount uint64, preimage string,
) string {
	buf := make([]byte, 0, len(sourceChain)+len(sourceAddress)+len(destination)+len(preimage)+8)
	buf = append(buf, sourceChain...)
	buf = append(buf, sourceAddress...)
	buf = append(buf, destination...)
	buf = binary.LittleEndian.AppendUint64(buf, amount)
	buf = append(buf, preimage...)
	digest := sha256.Sum256(buf)
	return hex.EncodeToString(digest[:])
}

// CompletionRepository is the consumed-event set guarding cross-chain
// completions against replay: Add must fail for an id already inserted.
type CompletionRepository interface {
	Add(ctx context.Context, completion Completion) error
	Get(ctx context.Context, id string) (*Completion, error)
	Delete(ctx context.Context, id string) error
	Close()
}
