package tronscan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func transactionServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction-info" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
}

func TestGetTransactionDecodesTransfers(t *testing.T) {
	server := transactionServer(t, `{
		"hash": "abc123",
		"confirmed": true,
		"timestamp": 1756700000000,
		"trc20TransferInfo": [
			{"symbol": "USDT", "from_address": "TFrom", "to_address": "TDest", "amount_str": "80000000"}
		]
	}`)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	info, err := client.GetTransaction(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if len(info.Transfers) != 1 {
		t.Fatalf("expected one transfer, got %d", len(info.Transfers))
	}
	transfer := info.Transfers[0]
	if transfer.Symbol != "USDT" {
		t.Fatalf("unexpected symbol %q", transfer.Symbol)
	}
	if transfer.Amount.String() != "80" {
		t.Fatalf("expected amount scaled by 1e6, got %s", transfer.Amount)
	}
}

func TestGetTransactionAcceptsTokenSymbolKey(t *testing.T) {
	// Some TronScan responses carry token_symbol instead of symbol.
	server := transactionServer(t, `{
		"hash": "abc123",
		"confirmed": true,
		"timestamp": 1756700000000,
		"tokenTransferInfo": {"token_symbol": "USDT", "from_address": "TFrom", "to_address": "TDest", "amount_str": "8000000"}
	}`)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	info, err := client.GetTransaction(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if len(info.Transfers) != 1 {
		t.Fatalf("expected one transfer, got %d", len(info.Transfers))
	}
	if info.Transfers[0].Symbol != "USDT" {
		t.Fatalf("unexpected symbol %q", info.Transfers[0].Symbol)
	}
	if info.Transfers[0].Amount.String() != "8" {
		t.Fatalf("expected amount scaled by 1e6, got %s", info.Transfers[0].Amount)
	}
}

func TestGetTransactionEmptyObjectIsNotFound(t *testing.T) {
	server := transactionServer(t, `{}`)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.GetTransaction(context.Background(), "missing")
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}
