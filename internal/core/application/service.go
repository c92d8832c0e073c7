package application

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/LockboxHQ/lockboxd/internal/core/domain"
	"github.com/LockboxHQ/lockboxd/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// evm addresses are 20 bytes, 0x-prefixed hex
var evmAddressRegexp = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

const fundingTimeout = 30 * time.Second

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Service is the swap state machine. It owns the lock registry and the
// relayer set, settles against the external token ledger, and serializes all
// lock mutations behind a single mutex so that whichever of withdraw/refund
// commits first wins and the other observes the settled status.
type Service struct {
	BuildInfo BuildInfo

	repoManager  ports.RepoManager
	ledgerSvc    ports.TokenLedger
	schedulerSvc ports.SchedulerService

	ownerId      string
	vaultAccount string

	// serializes lock creation and settlement
	mu  sync.Mutex
	now func() time.Time
}

func NewService(
	buildInfo BuildInfo,
	ownerId, vaultAccount string,
	repoManager ports.RepoManager,
	ledgerSvc ports.TokenLedger,
	schedulerSvc ports.SchedulerService,
) (*Service, error) {
	if len(ownerId) == 0 {
		return nil, fmt.Errorf("missing owner identity")
	}
	if len(vaultAccount) == 0 {
		return nil, fmt.Errorf("missing vault account")
	}

	return &Service{
		BuildInfo:    buildInfo,
		repoManager:  repoManager,
		ledgerSvc:    ledgerSvc,
		schedulerSvc: schedulerSvc,
		ownerId:      ownerId,
		vaultAccount: vaultAccount,
		now:          time.Now,
	}, nil
}

// Start launches the scheduler and the pending-funding reconciler. Locks
// whose funding transfer has been unresolved for longer than the threshold
// are reported on every pass until they resolve.
func (s *Service) Start(checkInterval, pendingThreshold time.Duration) error {
	if err := s.schedulerSvc.ScheduleRecurring(checkInterval, func() {
		s.reconcilePendingFunding(pendingThreshold)
	}); err != nil {
		return err
	}
	s.schedulerSvc.Start()
	return nil
}

func (s *Service) Stop() {
	s.schedulerSvc.Stop()
	s.repoManager.Close()
	logrus.Info("service stopped")
}

// SeedRelayers registers the configured relayer allow-list on behalf of the
// owner at startup.
func (s *Service) SeedRelayers(ctx context.Context, identities []string) error {
	for _, identity := range identities {
		if err := s.AddRelayer(ctx, s.ownerId, identity); err != nil {
			return err
		}
	}
	return nil
}

// InitiateSwap creates a lock over amount tokens and requests the funding
// transfer from the sender to the vault account. The lock is stored before
// the transfer is requested; the transfer outcome is resolved asynchronously
// and recorded in the lock's funding status.
func (s *Service) InitiateSwap(
	ctx context.Context,
	caller, secretHash, recipient string,
	amount uint64, timeout time.Duration,
	targetChain, targetAddress string,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := domain.NewLock(
		secretHash, caller, recipient, amount, timeout, targetChain, targetAddress, s.now(),
	)
	if err != nil {
		return "", err
	}

	if err := s.repoManager.Locks().Add(ctx, *lock); err != nil {
		return "", err
	}

	go s.requestFunding(*lock)

	logrus.WithFields(logrus.Fields{
		"lock_id":   lock.Id,
		"sender":    lock.Sender,
		"recipient": lock.Recipient,
		"amount":    lock.Amount,
		"end_time":  time.Unix(0, lock.EndTime).UTC(),
	}).Info("lock created, funding requested")

	return lock.Id, nil
}

func (s *Service) requestFunding(lock domain.Lock) {
	ctx, cancel := context.WithTimeout(context.Background(), fundingTimeout)
	defer cancel()

	note := fmt.Sprintf("locking tokens for cross-chain swap %s", lock.Id)
	err := s.ledgerSvc.TransferWithNotification(
		ctx, lock.Sender, s.vaultAccount, lock.Amount, note,
	)
	s.onTransferConfirmed(ctx, lock.Id, lock.Sender, lock.Recipient, lock.Amount, err)
}

// onTransferConfirmed resolves the funding phase of a lock. A failed funding
// transfer does not roll the lock back; it is recorded and reported so the
// lock can be reconciled out of band.
func (s *Service) onTransferConfirmed(
	ctx context.Context, lockId, sender, recipient string, amount uint64, transferErr error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := s.repoManager.Locks().Get(ctx, lockId)
	if err != nil {
		logrus.WithError(err).WithField("lock_id", lockId).
			Error("funding resolved for unknown lock")
		return
	}

	if transferErr != nil {
		lock.Funding = domain.FundingFailed
		if err := s.repoManager.Locks().Update(ctx, *lock); err != nil {
			logrus.WithError(err).WithField("lock_id", lockId).
				Error("failed to record funding failure")
			return
		}
		logrus.WithError(transferErr).WithFields(logrus.Fields{
			"lock_id": lockId,
			"sender":  sender,
			"amount":  amount,
		}).Error("token transfer failed, lock is unfunded")
		return
	}

	lock.Funding = domain.FundingConfirmed
	if err := s.repoManager.Locks().Update(ctx, *lock); err != nil {
		logrus.WithError(err).WithField("lock_id", lockId).
			Error("failed to record funding confirmation")
		return
	}

	logrus.WithFields(logrus.Fields{
		"lock_id":   lockId,
		"sender":    sender,
		"recipient": recipient,
		"amount":    amount,
	}).Info("swap initiated")
}

// Withdraw releases a lock's funds to its recipient against the revealed
// preimage. The settled status is persisted before the ledger transfer is
// issued, so a concurrent second settlement observes ErrAlreadySettled.
func (s *Service) Withdraw(ctx context.Context, caller, lockId, preimage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := s.repoManager.Locks().Get(ctx, lockId)
	if err != nil {
		return err
	}

	if err := lock.Withdraw(caller, preimage); err != nil {
		return err
	}

	if err := s.repoManager.Locks().Update(ctx, *lock); err != nil {
		return err
	}

	if err := s.ledgerSvc.Transfer(ctx, s.vaultAccount, lock.Recipient, lock.Amount); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"lock_id":   lockId,
			"recipient": lock.Recipient,
			"amount":    lock.Amount,
		}).Error("funds release failed after withdrawal, manual reconciliation required")
		return fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"lock_id":   lockId,
		"recipient": lock.Recipient,
		"amount":    lock.Amount,
	}).Info("swap withdrawn")

	return nil
}

// Refund returns a lock's funds to its sender once the timelock has expired.
func (s *Service) Refund(ctx context.Context, caller, lockId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := s.repoManager.Locks().Get(ctx, lockId)
	if err != nil {
		return err
	}

	if err := lock.Refund(caller, s.now()); err != nil {
		return err
	}

	if err := s.repoManager.Locks().Update(ctx, *lock); err != nil {
		return err
	}

	if err := s.ledgerSvc.Transfer(ctx, s.vaultAccount, lock.Sender, lock.Amount); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"lock_id": lockId,
			"sender":  lock.Sender,
			"amount":  lock.Amount,
		}).Error("funds release failed after refund, manual reconciliation required")
		return fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"lock_id": lockId,
		"sender":  lock.Sender,
		"amount":  lock.Amount,
	}).Info("swap refunded")

	return nil
}

// CompleteSwap processes relayer-submitted evidence that a swap completed on
// a foreign chain and mints the amount to the destination identity. The
// completion event is inserted into the consumed set before minting, so
// resubmitting the same attestation fails with ErrAlreadyCompleted.
func (s *Service) CompleteSwap(
	ctx context.Context,
	caller, sourceChain, sourceAddress, destination string,
	amount uint64, preimage string,
) error {
	isRelayer, err := s.repoManager.Relayers().Contains(ctx, caller)
	if err != nil {
		return err
	}
	if !isRelayer {
		return fmt.Errorf("%w: %s is not a registered relayer", domain.ErrUnauthorized, caller)
	}

	completion, err := domain.NewCompletion(
		sourceChain, sourceAddress, destination, amount, preimage, s.now(),
	)
	if err != nil {
		return err
	}

	if err := s.repoManager.Completions().Add(ctx, *completion); err != nil {
		return err
	}

	if err := s.ledgerSvc.Mint(ctx, destination, amount); err != nil {
		// the mint never happened, drop the record so the relayer can retry
		if delErr := s.repoManager.Completions().Delete(ctx, completion.Id); delErr != nil {
			logrus.WithError(delErr).WithField("completion_id", completion.Id).
				Error("failed to roll back completion record")
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"completion_id": completion.Id,
			"destination":   destination,
			"amount":        amount,
		}).Error("mint failed")
		return fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"completion_id":  completion.Id,
		"source_chain":   sourceChain,
		"source_address": sourceAddress,
		"destination":    destination,
		"amount":         amount,
	}).Info("cross-chain swap completed")

	return nil
}

// ExecuteCrossChainCall validates and records the intent to execute a call on
// a foreign chain. No foreign-chain execution happens here; the returned
// intent id only correlates the recorded intent with whatever bridge process
// picks it up.
func (s *Service) ExecuteCrossChainCall(
	ctx context.Context,
	caller, chainId, contractAddress, calldata string,
	gasLimit uint64,
) (string, error) {
	isRelayer, err := s.repoManager.Relayers().Contains(ctx, caller)
	if err != nil {
		return "", err
	}
	if !isRelayer && caller != s.ownerId {
		return "", fmt.Errorf(
			"%w: only relayers or the owner can execute cross-chain calls", domain.ErrUnauthorized,
		)
	}

	if _, err := strconv.ParseUint(chainId, 10, 64); err != nil {
		return "", fmt.Errorf("%w: invalid chain id format", domain.ErrInvalidInput)
	}
	if !evmAddressRegexp.MatchString(contractAddress) {
		return "", fmt.Errorf("%w: invalid contract address format", domain.ErrInvalidInput)
	}
	if len(calldata) == 0 {
		return "", fmt.Errorf("%w: calldata cannot be empty", domain.ErrInvalidInput)
	}

	intentId := computeIntentId(chainId, contractAddress, calldata, gasLimit)
	logrus.WithFields(logrus.Fields{
		"intent_id":    intentId,
		"chain_id":     chainId,
		"contract":     contractAddress,
		"gas_limit":    gasLimit,
		"calldata_len": len(calldata),
	}).Info("recorded cross-chain execution intent")

	return intentId, nil
}

func computeIntentId(chainId, contractAddress, calldata string, gasLimit uint64) string {
	buf := make([]byte, 0, len(chainId)+len(contractAddress)+len(calldata)+8)
	buf = append(buf, chainId...)
	buf = append(buf, contractAddress...)
	buf = append(buf, calldata...)
	buf = binary.LittleEndian.AppendUint64(buf, gasLimit)
	digest := sha256.Sum256(buf)
	return hex.EncodeToString(digest[:])
}

// AddRelayer registers an identity as relayer. Owner only, idempotent.
func (s *Service) AddRelayer(ctx context.Context, caller, identity string) error {
	if caller != s.ownerId {
		return fmt.Errorf("%w: only the owner can manage relayers", domain.ErrUnauthorized)
	}
	if len(identity) == 0 {
		return fmt.Errorf("%w: relayer identity is required", domain.ErrInvalidInput)
	}
	if err := s.repoManager.Relayers().Add(ctx, identity); err != nil {
		return err
	}
	logrus.WithField("relayer", identity).Info("added relayer")
	return nil
}

// RemoveRelayer unregisters an identity. Owner only, idempotent.
func (s *Service) RemoveRelayer(ctx context.Context, caller, identity string) error {
	if caller != s.ownerId {
		return fmt.Errorf("%w: only the owner can manage relayers", domain.ErrUnauthorized)
	}
	if err := s.repoManager.Relayers().Remove(ctx, identity); err != nil {
		return err
	}
	logrus.WithField("relayer", identity).Info("removed relayer")
	return nil
}

func (s *Service) IsRelayer(ctx context.Context, identity string) (bool, error) {
	return s.repoManager.Relayers().Contains(ctx, identity)
}

func (s *Service) HasLock(ctx context.Context, id string) (bool, error) {
	if _, err := s.repoManager.Locks().Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrLockNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) GetLock(ctx context.Context, id string) (*domain.Lock, error) {
	return s.repoManager.Locks().Get(ctx, id)
}

func (s *Service) reconcilePendingFunding(threshold time.Duration) {
	ctx := context.Background()
	cutoff := s.now().Add(-threshold)

	locks, err := s.repoManager.Locks().GetPendingFunding(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Warn("failed to scan for unconfirmed locks")
		return
	}

	for _, lock := range locks {
		logrus.WithFields(logrus.Fields{
			"lock_id":    lock.Id,
			"sender":     lock.Sender,
			"amount":     lock.Amount,
			"created_at": time.Unix(0, lock.CreatedAt).UTC(),
		}).Warn("lock funding still unconfirmed")
	}
}
