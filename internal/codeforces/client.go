package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jaipkapoor99/the-automaton/internal/fetch"
)

// rateLimitSleep is the fixed pause after every API call, respecting the
// platform's published rate limits.
const rateLimitSleep = time.Second

// MethodFriends requires authorization and is expected to fail without it, so
// its failures never produce an advisory line.
const MethodFriends = "user.friends"

// APIError is a non-OK response from the API.
type APIError struct {
	Method  string
	Comment string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error for %s: %s", e.Method, e.Comment)
}

// envelope is the API's response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

// Client calls the Codeforces REST API.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	signer    *Signer
	opts      *fetch.Options
	sleep     func(time.Duration)
	now       func() time.Time
}

// NewClient creates a client. apiKey and apiSecret may be empty; authorized
// calls are then skipped entirely.
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		signer:    NewSigner(apiSecret),
		opts:      fetch.DefaultOptions(),
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Call invokes an API method and returns the raw result payload.
//
// In authorized mode a missing key/secret pair skips the network call and
// returns (nil, nil): soft failure, not an error. A transport failure or a
// non-OK API status returns a nil payload with the error; callers decide
// whether the failure deserves an advisory report line.
func (c *Client) Call(ctx context.Context, method string, params url.Values, authorized bool) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}

	if authorized {
		if c.apiKey == "" || c.apiSecret == "" {
			return nil, nil
		}
		params.Set("apiKey", c.apiKey)
		params.Set("time", strconv.FormatInt(c.now().Unix(), 10))
		params.Set("apiSig", c.signer.SignRequest(method, params))
	}

	var resp envelope
	err := fetch.GetJSON(ctx, c.baseURL+"/"+method, params, c.opts, &resp)
	c.sleep(rateLimitSleep)
	if err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		comment := resp.Comment
		if comment == "" {
			comment = "Unknown error"
		}
		return nil, &APIError{Method: method, Comment: comment}
	}
	return resp.Result, nil
}

// call decodes the result of Call into out, reporting whether data arrived.
func call[T any](ctx context.Context, c *Client, method string, params url.Values, authorized bool, out *T) (bool, error) {
	raw, err := c.Call(ctx, method, params, authorized)
	if err != nil || raw == nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return true, nil
}
