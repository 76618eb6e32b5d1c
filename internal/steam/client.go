// Package steam generates the Steam library report from the Steam Web API.
package steam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jaipkapoor99/the-automaton/internal/fetch"
)

// requestTimeout is longer than the default: the owned-games payload for a
// large library is slow to assemble server-side.
const requestTimeout = 30 * time.Second

// rateLimitSleep is the fixed pause after every API call.
const rateLimitSleep = 500 * time.Millisecond

// Client calls the Steam Web API. Every call carries the API key, the steam
// ID, and format=json; method-specific parameters are added per call.
type Client struct {
	baseURL string
	apiKey  string
	steamID string
	opts    *fetch.Options
	sleep   func(time.Duration)
}

// NewClient creates a Steam Web API client.
func NewClient(baseURL, apiKey, steamID string) *Client {
	opts := fetch.DefaultOptions()
	opts.Timeout = requestTimeout
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		steamID: steamID,
		opts:    opts,
		sleep:   time.Sleep,
	}
}

// Call invokes interface/method/v{version} and decodes into out. A 403 means
// the profile or game data is private; it returns (false, nil) so callers
// can degrade per entry. Other failures return the error.
func (c *Client) Call(ctx context.Context, iface, method string, version int, params url.Values, out any) (bool, error) {
	if c.apiKey == "" {
		return false, errors.New("Steam API Key is missing")
	}

	merged := url.Values{}
	merged.Set("key", c.apiKey)
	merged.Set("steamid", c.steamID)
	merged.Set("format", "json")
	for k, vs := range params {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}

	endpoint := fmt.Sprintf("%s/%s/%s/v%d/", c.baseURL, iface, method, version)
	err := fetch.GetJSON(ctx, endpoint, merged, c.opts, out)
	c.sleep(rateLimitSleep)
	if err != nil {
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusForbidden {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
