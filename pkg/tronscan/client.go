package tronscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://apilist.tronscan.org/api"
	defaultTimeout              = 15 * time.Second
	requestBodyReadLimit  int64 = 1024
	trc20DecimalsExponent int32 = 6
)

// ErrTransactionNotFound signals the hash does not resolve to a transaction
// on chain (yet). Callers may prompt the user to retry after confirmation.
var ErrTransactionNotFound = errors.New("transaction not found")

// Client wraps the TronScan transaction-info API used for payment checks.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured TronScan base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the default HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the TronScan client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client
}

// Transfer is a normalized TRC-20 token transfer inside a transaction.
type Transfer struct {
	Symbol      string
	FromAddress string
	ToAddress   string
	Amount      decimal.Decimal
}

// TransactionInfo carries the transaction fields relevant to verification.
type TransactionInfo struct {
	Hash      string
	Confirmed bool
	Timestamp time.Time
	Transfers []Transfer
}

type rawTransfer struct {
	Symbol      string      `json:"symbol"`
	TokenSymbol string      `json:"token_symbol"`
	FromAddress string      `json:"from_address"`
	ToAddress   string      `json:"to_address"`
	AmountStr   json.Number `json:"amount_str"`
}

type rawTransaction struct {
	Hash              string        `json:"hash"`
	Confirmed         bool          `json:"confirmed"`
	Timestamp         int64         `json:"timestamp"`
	ContractRet       string        `json:"contractRet"`
	TRC20TransferInfo []rawTransfer `json:"trc20TransferInfo"`
	TokenTransferInfo *rawTransfer  `json:"tokenTransferInfo"`
}

// GetTransaction resolves a transaction hash into the transfers it contains.
// Unknown hashes return ErrTransactionNotFound; transport and decode problems
// surface as dependency errors.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*TransactionInfo, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tronscan client not configured")
	}
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction hash is required")
	}

	endpoint := fmt.Sprintf("%s/transaction-info?hash=%s", strings.TrimRight(c.baseURL, "/"), url.QueryEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build transaction-info request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute transaction-info request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTransactionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "transaction-info request failed")
	}

	var raw rawTransaction
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode transaction-info response")
	}

	// TronScan answers 200 with an empty object for unknown hashes.
	if raw.Hash == "" && raw.Timestamp == 0 {
		return nil, ErrTransactionNotFound
	}

	transfers := make([]Transfer, 0, len(raw.TRC20TransferInfo)+1)
	for _, t := range raw.TRC20TransferInfo {
		transfers = append(transfers, normalizeTransfer(t))
	}
	if len(transfers) == 0 && raw.TokenTransferInfo != nil {
		transfers = append(transfers, normalizeTransfer(*raw.TokenTransferInfo))
	}

	return &TransactionInfo{
		Hash:      raw.Hash,
		Confirmed: raw.Confirmed,
		Timestamp: time.UnixMilli(raw.Timestamp).UTC(),
		Transfers: transfers,
	}, nil
}

func normalizeTransfer(t rawTransfer) Transfer {
	amount := decimal.Zero
	if raw := t.AmountStr.String(); raw != "" {
		if parsed, err := decimal.NewFromString(raw); err == nil {
			amount = parsed.Shift(-trc20DecimalsExponent)
		}
	}
	// TronScan names the token field inconsistently across endpoints.
	symbol := t.Symbol
	if symbol == "" {
		symbol = t.TokenSymbol
	}
	return Transfer{
		Symbol:      symbol,
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		Amount:      amount,
	}
}
