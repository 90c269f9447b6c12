package wb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to the Wildberries advert API. Every outbound request,
// fetch or write, passes through one shared token bucket so the aggregate
// request rate stays bounded regardless of per-campaign concurrency.
type Client struct {
	BaseURL string
	Token   string

	httpClient *http.Client
	limiter    *rate.Limiter
	waitCap    time.Duration
}

// Options configures a Client. Zero values fall back to the defaults the
// advert API documents (4 requests per second, 30s per call).
type Options struct {
	Timeout       time.Duration
	RatePerSecond int
	RateWaitCap   time.Duration
}

// NewClient creates an advert API client.
func NewClient(baseURL, token string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 4
	}
	if opts.RateWaitCap <= 0 {
		opts.RateWaitCap = 10 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RatePerSecond),
		waitCap:    opts.RateWaitCap,
	}
}

// fullStats is the expected JSON shape of /adv/v3/fullstats. Unknown
// fields are ignored; missing fields decode to zero values so schema
// drift degrades to explicit errors, not panics.
type fullStats struct {
	Result []struct {
		Shows   int     `json:"shows"`
		Clicks  int     `json:"clicks"`
		Spend   float64 `json:"spend"`
		Revenue float64 `json:"revenue"`
	} `json:"result"`
}

// Stats is the raw latest reading for a campaign.
type Stats struct {
	Shows   int
	Clicks  int
	Spend   float64
	Revenue float64
}

// GetStats fetches the most recent stats entry for a campaign.
// GET /adv/v3/fullstats?id=<campaignID>
func (c *Client) GetStats(ctx context.Context, campaignID int64) (*Stats, error) {
	endpoint := fmt.Sprintf("%s/adv/v3/fullstats?id=%d", c.BaseURL, campaignID)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil, "get stats")
	if err != nil {
		return nil, err
	}
	var stats fullStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, &APIError{Kind: KindTransient, Op: "get stats", Err: fmt.Errorf("decode stats: %w", err)}
	}
	if len(stats.Result) == 0 {
		return nil, &APIError{Kind: KindNotFound, Op: "get stats", Err: fmt.Errorf("no stats for campaign %d", campaignID)}
	}
	latest := stats.Result[len(stats.Result)-1]
	return &Stats{
		Shows:   latest.Shows,
		Clicks:  latest.Clicks,
		Spend:   latest.Spend,
		Revenue: latest.Revenue,
	}, nil
}

// SetBid updates the bid on a campaign.
// PATCH /adv/v3/campaigns/{id}/bids
func (c *Client) SetBid(ctx context.Context, campaignID int64, bid int) error {
	payload, err := json.Marshal(map[string]interface{}{
		"campaignId": campaignID,
		"bid":        bid,
	})
	if err != nil {
		return fmt.Errorf("marshal bid payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/adv/v3/campaigns/%d/bids", c.BaseURL, campaignID)
	_, err = c.do(ctx, http.MethodPatch, endpoint, payload, "set bid")
	return err
}

// Pause pauses a campaign.
// GET /adv/v0/pause?id=<campaignID>
func (c *Client) Pause(ctx context.Context, campaignID int64) error {
	endpoint := fmt.Sprintf("%s/adv/v0/pause?id=%d", c.BaseURL, campaignID)
	_, err := c.do(ctx, http.MethodGet, endpoint, nil, "pause campaign")
	return err
}

// do issues one rate-limited request and maps failures to APIError kinds.
func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, op string) ([]byte, error) {
	if err := c.waitTurn(ctx); err != nil {
		return nil, &APIError{Kind: KindTransient, Op: op, Err: err}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	req.Header.Set("Authorization", c.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindTransient, Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Kind:       classify(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Op:         op,
			Err:        fmt.Errorf("body: %s", truncate(body, 200)),
		}
	}
	return body, nil
}

// waitTurn blocks until the token bucket allows a request. A wait longer
// than the hard cap degrades to a transient error rather than stalling
// the cycle.
func (c *Client) waitTurn(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.waitCap)
	defer cancel()
	if err := c.limiter.Wait(waitCtx); err != nil {
		return fmt.Errorf("rate limit wait exceeded %v: %w", c.waitCap, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
