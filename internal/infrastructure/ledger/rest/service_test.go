package restledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	restledger "github.com/LockboxHQ/lockboxd/internal/infrastructure/ledger/rest"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path string
	body map[string]any
}

func newLedgerServer(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests = append(requests, recordedRequest{r.URL.Path, body})

		w.WriteHeader(status)
		if status >= http.StatusBadRequest {
			// nolint:all
			w.Write([]byte("insufficient balance"))
		}
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func TestTransfer(t *testing.T) {
	server, requests := newLedgerServer(t, http.StatusOK)
	svc := restledger.NewService(server.URL)

	err := svc.Transfer(context.Background(), "alice", "vault", 100)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	require.Equal(t, "/v1/transfers", req.path)
	require.Equal(t, "alice", req.body["from"])
	require.Equal(t, "vault", req.body["to"])
	require.Equal(t, float64(100), req.body["amount"])
}

func TestTransferWithNotification(t *testing.T) {
	server, requests := newLedgerServer(t, http.StatusOK)
	svc := restledger.NewService(server.URL)

	err := svc.TransferWithNotification(context.Background(), "alice", "vault", 100, "lock abc")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	require.Equal(t, "/v1/transfers/notify", req.path)
	require.Equal(t, "lock abc", req.body["note"])
}

func TestMint(t *testing.T) {
	server, requests := newLedgerServer(t, http.StatusOK)
	svc := restledger.NewService(server.URL)

	err := svc.Mint(context.Background(), "carol", 500)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	require.Equal(t, "/v1/mints", req.path)
	require.Equal(t, "carol", req.body["to"])
	require.Equal(t, float64(500), req.body["amount"])
}

func TestLedgerFailure(t *testing.T) {
	server, _ := newLedgerServer(t, http.StatusUnprocessableEntity)
	svc := restledger.NewService(server.URL)

	err := svc.Transfer(context.Background(), "alice", "vault", 100)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient balance")
}
