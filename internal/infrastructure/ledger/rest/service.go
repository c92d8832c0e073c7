package restledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LockboxHQ/lockboxd/internal/core/ports"
)

// service talks JSON over HTTP to the fungible-token ledger. The ledger is a
// separate system; this client only consumes its transfer/mint operations and
// reports their outcome.
type service struct {
	baseUrl string
	client  *http.Client
}

func NewService(url string) ports.TokenLedger {
	return &service{
		baseUrl: strings.TrimRight(url, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Note   string `json:"note,omitempty"`
}

type mintRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func (s *service) Transfer(ctx context.Context, from, to string, amount uint64) error {
	return s.post(ctx, "/v1/transfers", transferRequest{From: from, To: to, Amount: amount})
}

func (s *service) TransferWithNotification(
	ctx context.Context, from, to string, amount uint64, note string,
) error {
	return s.post(ctx, "/v1/transfers/notify", transferRequest{
		From: from, To: to, Amount: amount, Note: note,
	})
}

func (s *service) Mint(ctx context.Context, to string, amount uint64) error {
	return s.post(ctx, "/v1/mints", mintRequest{To: to, Amount: amount})
}

func (s *service) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseUrl+path, bytes.NewReader(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 512))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
