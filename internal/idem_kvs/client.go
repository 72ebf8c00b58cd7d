package idem_kvs

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// client.go is the client side of the store.
// every put/append gets one request id, and that same id is resent on
// every retry, so the server can tell a retry from a new operation.
// transport failures are retried forever with a fixed backoff.

var (
	ErrUnsupportedOp = errors.New("unsupported operation")
	ErrRejected      = errors.New("request rejected by server")
)

type Client struct {
	baseURL string
	http    *http.Client
	backoff time.Duration
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := cfg.Addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		backoff: cfg.Backoff,
	}, nil
}

// newRequestID returns 128 random bits as 32 hex chars.
func newRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:]) // never fails
	return hex.EncodeToString(b[:])
}

// Get returns the value at key, "" if absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.sendWithRetry(ctx, CmdGet, key, "", "")
}

// Put sets key to value and returns the stored value.
func (c *Client) Put(ctx context.Context, key, value string) (string, error) {
	return c.sendWithRetry(ctx, CmdPut, key, value, newRequestID())
}

// Append concatenates value onto key and returns the resulting value.
func (c *Client) Append(ctx context.Context, key, value string) (string, error) {
	return c.sendWithRetry(ctx, CmdAppend, key, value, newRequestID())
}

// sendWithRetry keeps resending the same request until a response comes back.
// it only gives up when ctx is done, the op is unsupported, or the server
// says the request itself is bad.
func (c *Client) sendWithRetry(ctx context.Context, op CommandType, key, value, requestID string) (string, error) {
	if !validType(op) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOp, op)
	}

	for attempt := 1; ; attempt++ {
		res, err := c.send(ctx, op, key, value, requestID)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrRejected) {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		log.Printf("retrying request op=%s key=%q request_id=%s attempt=%d err=%v",
			op, key, requestID, attempt, err)

		t := time.NewTimer(c.backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
}

// send makes one attempt. any error that does not wrap ErrRejected is a
// transport failure and worth retrying.
func (c *Client) send(ctx context.Context, op CommandType, key, value, requestID string) (string, error) {
	var req *http.Request
	var err error

	switch op {
	case CmdGet:
		q := url.Values{}
		q.Set("key", key)
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get?"+q.Encode(), nil)
	case CmdPut, CmdAppend:
		body, merr := json.Marshal(mutateReq{Key: []byte(key), Value: []byte(value), RequestID: requestID})
		if merr != nil {
			return "", fmt.Errorf("%w: %v", ErrRejected, merr)
		}
		path := "/put"
		if op == CmdAppend {
			path = "/append"
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOp, op)
	}
	if err != nil {
		// a request we cannot even build will never succeed
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// no cap on the body, appends can grow a value past any fixed limit
	dec := json.NewDecoder(resp.Body)

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("server status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		var e errResp
		_ = dec.Decode(&e)
		return "", fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, e.Error)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if op == CmdGet {
		var out getResp
		if err := dec.Decode(&out); err != nil {
			return "", fmt.Errorf("decoding get response: %w", err)
		}
		return string(out.Value), nil
	}

	var out mutateResp
	if err := dec.Decode(&out); err != nil {
		return "", fmt.Errorf("decoding %s response: %w", op, err)
	}
	return string(out.Result), nil
}
