// Package httpsequencer talks to a sequencer over its JSON http API.
package httpsequencer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	"github.com/nssa-network/nssa-wallet/pkg/circuitbreaker"
	"github.com/nssa-network/nssa-wallet/pkg/httputil"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

const (
	defaultRequestTimeout = 15 * time.Second
)

var (
	// ErrNullAddr ...
	ErrNullAddr = errors.New("sequencer address must not be null")
	// ErrInvalidRequestsPerSecond ...
	ErrInvalidRequestsPerSecond = errors.New("requests per second must not be negative")

	jsonHeader = map[string]string{"Content-Type": "application/json"}
)

// Opts is the struct given to NewClient.
type Opts struct {
	Addr           string
	RequestTimeout time.Duration
	// RequestsPerSecond paces the requests, 0 means unlimited.
	RequestsPerSecond int
}

func (o Opts) validate() error {
	if len(strings.TrimSpace(o.Addr)) <= 0 {
		return ErrNullAddr
	}
	if o.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}
	return nil
}

type client struct {
	baseURL string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

type response struct {
	status int
	body   []byte
}

// NewClient returns a ports.SequencerClient for the sequencer listening on
// opts.Addr. Transport failures and server errors are never retried: they
// count towards a circuit breaker that fails fast while the sequencer is
// unreachable.
func NewClient(opts Opts) (ports.SequencerClient, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(opts.Addr, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	limiter := ratelimit.NewUnlimited()
	if opts.RequestsPerSecond > 0 {
		limiter = ratelimit.New(opts.RequestsPerSecond)
	}

	return &client{
		baseURL: baseURL,
		timeout: timeout,
		cb:      circuitbreaker.NewCircuitBreaker("sequencer"),
		limiter: limiter,
	}, nil
}

func (c *client) SubmitTransaction(
	ctx context.Context, tx domain.Transaction,
) (*ports.SubmitResult, error) {
	encoded, err := encodeTransaction(tx)
	if err != nil {
		return nil, err
	}
	body, _ := json.Marshal(submitTxRequest{Tx: encoded})

	res, err := c.call(ctx, http.MethodPost, submitTxPath, body)
	if err != nil {
		return nil, err
	}
	if res.status != http.StatusOK {
		return nil, unexpectedStatus(res)
	}

	var resp submitTxResponse
	if err := json.Unmarshal(res.body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse submit response: %w", err)
	}
	return resp.toResult()
}

func (c *client) GetBlock(ctx context.Context, blockId uint64) (*domain.Block, error) {
	res, err := c.call(ctx, http.MethodGet, fmt.Sprintf("%s%d", blockPath, blockId), nil)
	if err != nil {
		return nil, err
	}
	switch res.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ports.ErrBlockNotFound
	default:
		return nil, unexpectedStatus(res)
	}

	var resp blockResponse
	if err := json.Unmarshal(res.body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse block %d: %w", blockId, err)
	}
	block, err := resp.toBlock()
	if err != nil {
		return nil, err
	}
	if block.BlockId != blockId {
		return nil, fmt.Errorf("requested block %d, got %d", blockId, block.BlockId)
	}
	return block, nil
}

func (c *client) GetLastBlockId(ctx context.Context) (uint64, error) {
	res, err := c.call(ctx, http.MethodGet, lastBlockPath, nil)
	if err != nil {
		return 0, err
	}
	if res.status != http.StatusOK {
		return 0, unexpectedStatus(res)
	}

	var resp lastBlockResponse
	if err := json.Unmarshal(res.body, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse last block id: %w", err)
	}
	return resp.BlockId, nil
}

func (c *client) GetAccount(
	ctx context.Context, id domain.AccountId,
) (*ports.AccountState, error) {
	res, err := c.call(ctx, http.MethodGet, accountPath+id.String(), nil)
	if err != nil {
		return nil, err
	}
	switch res.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ports.ErrRemoteAccountNotFound
	default:
		return nil, unexpectedStatus(res)
	}

	var resp accountResponse
	if err := json.Unmarshal(res.body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	return resp.toAccountState()
}

func (c *client) GetProofForCommitment(
	ctx context.Context, commitment domain.Commitment,
) (*domain.MembershipProof, error) {
	res, err := c.call(ctx, http.MethodGet, proofPath+commitment.String(), nil)
	if err != nil {
		return nil, err
	}
	switch res.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ports.ErrCommitmentNotFound
	default:
		return nil, unexpectedStatus(res)
	}

	var resp proofResponse
	if err := json.Unmarshal(res.body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse proof: %w", err)
	}
	return resp.toMembershipProof()
}

func (c *client) Close() {}

// call performs the request through rate limiter and circuit breaker. Any
// failure to get a response, 5xx statuses included, is reported as
// ports.ErrNetwork. Cancellation of ctx is reported as is.
func (c *client) call(
	ctx context.Context, method, path string, body []byte,
) (*response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.limiter.Take()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.cb.Execute(func() (interface{}, error) {
		status, resp, err := httputil.NewHTTPRequest(
			reqCtx, method, c.baseURL+path, body, jsonHeader,
		)
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, fmt.Errorf("status %d: %s", status, errorMessage(resp))
		}
		return &response{status, resp}, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s %s: %s", ports.ErrNetwork, method, path, err)
	}
	return res.(*response), nil
}

func unexpectedStatus(res *response) error {
	return fmt.Errorf(
		"unexpected response status %d: %s", res.status, errorMessage(res.body),
	)
}

func errorMessage(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.Error) > 0 {
		return resp.Error
	}
	return strings.TrimSpace(string(body))
}
