// lemon-club-service/services/ledger_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jonboulle/clockwork"

	"lemon-club-service/models"
	"lemon-club-service/utils"
)

// TokenInfo is the on-ledger identity of a minted token.
type TokenInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type MintResult struct {
	MintAddress string `json:"mintAddress"`
	Signature   string `json:"signature"`
}

type TxResult struct {
	Signature string `json:"signature"`
}

// LedgerClient is the registry/ledger collaborator: remote, retry-able, with
// rate-limit/timeout failures distinguishable from permanent ones.
type LedgerClient interface {
	Mint(ctx context.Context, owner, name, symbol, metadataURI string) (*MintResult, error)
	UpdateMetadata(ctx context.Context, mintAddress, name, symbol, metadataURI string) (*TxResult, error)
	GetBalance(ctx context.Context, address string) (int64, error)
	FindByReference(ctx context.Context, mintAddress string) (*TokenInfo, error)
}

// LedgerError carries the failure class the retry policy keys on.
type LedgerError struct {
	Status int
	Code   string // "rate_limited", "timeout", "remote_error"
	Msg    string
}

func (e *LedgerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ledger %s (%d): %s", e.Code, e.Status, e.Msg)
	}
	return fmt.Sprintf("ledger %s: %s", e.Code, e.Msg)
}

// Retryable reports whether the retry budget applies. Only rate limiting and
// timeouts are transient; everything else propagates immediately.
func (e *LedgerError) Retryable() bool {
	return e.Code == "rate_limited" || e.Code == "timeout"
}

const ledgerMaxAttempts = 5

// RPCLedgerClient talks to the ledger RPC endpoint over HTTP JSON. The active
// endpoint is a field, not a global: the failover swap is visible state on
// the client.
type RPCLedgerClient struct {
	primary  string
	fallback string
	client   *http.Client
	clock    clockwork.Clock

	baseDelay time.Duration

	mu     sync.Mutex
	active string

	// findByReference results barely change (only an evolve rewrites them),
	// so lookups go through a small LRU.
	cache *lru.Cache
}

func NewRPCLedgerClient(primary, fallback string, baseDelay time.Duration, clock clockwork.Clock) *RPCLedgerClient {
	cache, _ := lru.New(512)
	return &RPCLedgerClient{
		primary:   primary,
		fallback:  fallback,
		client:    utils.HTTPClient,
		clock:     clock,
		baseDelay: baseDelay,
		active:    primary,
		cache:     cache,
	}
}

func (c *RPCLedgerClient) endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *RPCLedgerClient) failover() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != c.fallback {
		log.Printf("[Ledger] Switching to fallback RPC %s", c.fallback)
		c.active = c.fallback
	}
}

// withRetry runs op under the bounded retry policy: up to ledgerMaxAttempts
// tries with delay = attempt × baseDelay, retrying only retryable failures.
// When the budget is exhausted it fails over to the secondary endpoint for
// one final attempt, then propagates.
func (c *RPCLedgerClient) withRetry(ctx context.Context, op func() error) error {
	for attempt := 1; attempt <= ledgerMaxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		var le *LedgerError
		if !errors.As(err, &le) || !le.Retryable() {
			return err
		}
		if attempt == ledgerMaxAttempts {
			c.failover()
			return op()
		}
		delay := time.Duration(attempt) * c.baseDelay
		log.Printf("[Ledger] RPC failed: %v. Retrying after %s...", err, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(delay):
		}
	}
	return nil
}

// do performs one attempt against the active endpoint and classifies the
// outcome into the retry taxonomy.
func (c *RPCLedgerClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() || errors.Is(err, context.DeadlineExceeded) {
			return &LedgerError{Code: "timeout", Msg: err.Error()}
		}
		return fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &LedgerError{Status: resp.StatusCode, Code: "rate_limited", Msg: string(data)}
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return &LedgerError{Status: resp.StatusCode, Code: "timeout", Msg: string(data)}
	case resp.StatusCode != http.StatusOK:
		return &LedgerError{Status: resp.StatusCode, Code: "remote_error", Msg: string(data)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *RPCLedgerClient) Mint(ctx context.Context, owner, name, symbol, metadataURI string) (*MintResult, error) {
	payload := map[string]any{
		"owner":       owner,
		"name":        name,
		"symbol":      symbol,
		"metadataUri": metadataURI,
	}
	var res MintResult
	err := c.withRetry(ctx, func() error {
		return c.do(ctx, http.MethodPost, "/v1/tokens", payload, &res)
	})
	if err != nil {
		return nil, err
	}
	if res.Signature == "" {
		return nil, &LedgerError{Code: "remote_error", Msg: "no transaction signature returned"}
	}
	return &res, nil
}

func (c *RPCLedgerClient) UpdateMetadata(ctx context.Context, mintAddress, name, symbol, metadataURI string) (*TxResult, error) {
	payload := map[string]any{
		"name":        name,
		"symbol":      symbol,
		"metadataUri": metadataURI,
	}
	var res TxResult
	err := c.withRetry(ctx, func() error {
		return c.do(ctx, http.MethodPost, "/v1/tokens/"+mintAddress+"/metadata", payload, &res)
	})
	if err != nil {
		return nil, err
	}
	c.cache.Remove(mintAddress)
	return &res, nil
}

func (c *RPCLedgerClient) GetBalance(ctx context.Context, address string) (int64, error) {
	var res struct {
		Lamports int64 `json:"lamports"`
	}
	err := c.withRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/v1/balance/"+address, nil, &res)
	})
	if err != nil {
		return 0, err
	}
	return res.Lamports, nil
}

func (c *RPCLedgerClient) FindByReference(ctx context.Context, mintAddress string) (*TokenInfo, error) {
	if cached, ok := c.cache.Get(mintAddress); ok {
		info := cached.(TokenInfo)
		return &info, nil
	}
	var res TokenInfo
	err := c.withRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/v1/tokens/"+mintAddress, nil, &res)
	})
	if err != nil {
		return nil, err
	}
	c.cache.Add(mintAddress, res)
	return &res, nil
}

// externalErr normalizes ledger failures into the domain taxonomy at the
// operation boundary.
func externalErr(op, msg string, err error) error {
	if models.KindOf(err) != 0 {
		return err
	}
	return models.External(op, msg, err)
}
