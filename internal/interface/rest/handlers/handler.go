package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/LockboxHQ/lockboxd/internal/core/application"
	"github.com/LockboxHQ/lockboxd/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	IdentityHeader = "X-Identity"
	IdentityKey    = "identity"
)

type Handler struct {
	svc *application.Service
}

func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc}
}

func (h *Handler) InitiateSwap(c *gin.Context) {
	var req initiateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lockId, err := h.svc.InitiateSwap(
		c.Request.Context(), caller(c),
		req.SecretHash, req.Recipient, req.Amount,
		time.Duration(req.TimeoutSecs)*time.Second,
		req.TargetChain, req.TargetAddress,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, initiateSwapResponse{LockId: lockId})
}

func (h *Handler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Withdraw(c.Request.Context(), caller(c), c.Param("id"), req.Preimage); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Refund(c *gin.Context) {
	if err := h.svc.Refund(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) CompleteSwap(c *gin.Context) {
	var req completeSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.CompleteSwap(
		c.Request.Context(), caller(c),
		req.SourceChain, req.SourceAddress, req.Destination, req.Amount, req.Preimage,
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ExecuteCrossChainCall(c *gin.Context) {
	var req crossChainCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intentId, err := h.svc.ExecuteCrossChainCall(
		c.Request.Context(), caller(c),
		req.ChainId, req.ContractAddress, req.Calldata, req.GasLimit,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, crossChainCallResponse{IntentId: intentId})
}

func (h *Handler) GetLock(c *gin.Context) {
	lock, err := h.svc.GetLock(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLockResponse(lock))
}

func (h *Handler) IsRelayer(c *gin.Context) {
	identity := c.Param("identity")
	isRelayer, err := h.svc.IsRelayer(c.Request.Context(), identity)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, isRelayerResponse{Identity: identity, IsRelayer: isRelayer})
}

func (h *Handler) AddRelayer(c *gin.Context) {
	if err := h.svc.AddRelayer(c.Request.Context(), caller(c), c.Param("identity")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) RemoveRelayer(c *gin.Context) {
	if err := h.svc.RemoveRelayer(c.Request.Context(), caller(c), c.Param("identity")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetInfo(c *gin.Context) {
	info := h.svc.BuildInfo
	c.JSON(http.StatusOK, infoResponse{
		Version: info.Version,
		Commit:  info.Commit,
		Date:    info.Date,
	})
}

func caller(c *gin.Context) string {
	return c.GetString(IdentityKey)
}

func toLockResponse(lock *domain.Lock) lockResponse {
	return lockResponse{
		Id:            lock.Id,
		SecretHash:    lock.SecretHash,
		Sender:        lock.Sender,
		Recipient:     lock.Recipient,
		Amount:        lock.Amount,
		EndTime:       lock.EndTime,
		Status:        lock.Status.String(),
		Funding:       lock.Funding.String(),
		Preimage:      lock.Preimage,
		TargetChain:   lock.TargetChain,
		TargetAddress: lock.TargetAddress,
		CreatedAt:     lock.CreatedAt,
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), gin.H{"error": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrLockNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrSecretMismatch):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateLock),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrTimelockNotExpired):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
