package cv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lixenwraith/phosphor/status"
)

var (
	// ErrFetch wraps transport failures and non-2xx responses
	ErrFetch = errors.New("cv: fetch failed")
	// ErrInvalid is returned for a body that is not valid JSON
	ErrInvalid = errors.New("cv: invalid document")
)

const (
	// DefaultTimeout bounds a single request
	DefaultTimeout = 10 * time.Second
	maxBody        = 4 << 20
)

// Client fetches the CV document and stats resources
type Client struct {
	http *http.Client
	url  string

	fetches *atomic.Int64
	errors  *atomic.Int64
}

// NewClient creates a client for the document at url. reg may be nil.
func NewClient(url string, timeout time.Duration, reg *status.Registry) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		url:     url,
		fetches: reg.Ints.Get("cv.fetches"),
		errors:  reg.Ints.Get("cv.errors"),
	}
}

// URL returns the document location
func (c *Client) URL() string { return c.url }

// Fetch downloads and validates the CV document
func (c *Client) Fetch(ctx context.Context) (gjson.Result, error) {
	body, err := c.get(ctx, c.url)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.Valid(body) {
		c.errors.Add(1)
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrInvalid, c.url)
	}
	return gjson.Parse(body), nil
}

// FetchStats downloads a per-project stats document and returns its daily counts
func (c *Client) FetchStats(ctx context.Context, url string) (map[string]int, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseStats(body)
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	c.fetches.Add(1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.errors.Add(1)
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.errors.Add(1)
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.errors.Add(1)
		return "", fmt.Errorf("%w: %s: %s", ErrFetch, url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.errors.Add(1)
		return "", fmt.Errorf("%w: read %s: %v", ErrFetch, url, err)
	}
	return string(data), nil
}
