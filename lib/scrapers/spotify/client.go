// Package spotify wraps the Spotify Web API catalog endpoints used for
// submission enrichment: batched track, artist and audio-feature lookups
// under the client-credentials flow.
//
// The tracks and artists endpoints return results in request order
// without echoing the requested ids, so this client guarantees that the
// response slice index i corresponds to ids[i]; downstream positional
// merging depends on it. The audio-features endpoint does echo ids, so
// its results are joined by id instead.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"musicleague-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"

	// per-request identifier limits imposed by the service
	TrackBatchLimit        = 50
	ArtistBatchLimit       = 50
	AudioFeatureBatchLimit = 100
)

type ClientOptions struct {
	ClientID     string
	ClientSecret string
	// BaseURL and TokenURL override the production endpoints, used by
	// tests that point the client at a local server.
	BaseURL  string
	TokenURL string
	// Retries bounds transient-failure retries. Zero means 4.
	Retries int
}

// Client is a batched catalog lookup client with bounded
// exponential-backoff retry built in. Exhausting retries surfaces the
// failure to the caller; the client never silently returns empty data.
type Client struct {
	http     *resty.Client
	tokenURL string
	id       string
	secret   string

	mu    sync.Mutex
	token string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("missing spotify client credentials")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	retries := opts.Retries
	if retries == 0 {
		retries = 4
	}

	c := &Client{
		tokenURL: tokenURL,
		id:       opts.ClientID,
		secret:   opts.ClientSecret,
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(time.Minute)
	client.SetRetryCount(retries)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetRetryMaxWaitTime(16 * time.Second)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		code := res.StatusCode()
		return code == http.StatusTooManyRequests ||
			code == http.StatusUnauthorized ||
			code >= http.StatusInternalServerError
	})
	client.AddRetryHook(func(res *resty.Response, err error) {
		// an expired token is refreshed by the next OnBeforeRequest
		if res != nil && res.StatusCode() == http.StatusUnauthorized {
			c.invalidateToken()
		}
	})
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		token, err := c.accessToken(req.Context())
		if err != nil {
			return err
		}
		req.SetAuthToken(token)
		return nil
	})
	telemetry.InstrumentResty(client, "scrapers/spotify")

	c.http = client
	return c, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// accessToken returns the cached client-credentials token, fetching a
// fresh one when none is cached.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	res, err := resty.New().R().
		SetContext(ctx).
		SetBasicAuth(c.id, c.secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&body).
		Post(c.tokenURL)
	if err != nil {
		return "", fmt.Errorf("fetch access token: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("fetch access token: status %d", res.StatusCode())
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("fetch access token: empty token in response")
	}

	c.token = body.AccessToken
	return c.token, nil
}
