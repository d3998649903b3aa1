package catalog

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ClientConfig configures the HTTP catalog client.
type ClientConfig struct {
	// BaseURL of the catalog API, without trailing slash.
	BaseURL string
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	// Only responses with status >= 500 are retried.
	MaxRetries uint64
	// RetryBaseDelay is the initial backoff interval; it doubles each attempt
	// with jitter applied.
	RetryBaseDelay time.Duration
}

var _ Gateway = (*Client)(nil)

// Client implements Gateway over HTTP with a bounded retry policy.
// Concurrent ListProducts calls are collapsed into a single in-flight request;
// results are never cached beyond that.
type Client struct {
	baseURL    string
	httpc      *http.Client
	maxRetries uint64
	baseDelay  time.Duration
	group      singleflight.Group
}

// NewClient creates a catalog Client from the given config.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay == 0 {
		baseDelay = 200 * time.Millisecond
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpc:      &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		baseDelay:  baseDelay,
	}
}

// ListProducts fetches the full product listing. Callers joining an in-flight
// fetch share its result and inherit the first caller's deadline.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	v, err, _ := c.group.Do("products", func() (interface{}, error) {
		return c.listWithRetry(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Product), nil
}

func (c *Client) listWithRetry(ctx context.Context) ([]Product, error) {
	var products []Product

	op := func() error {
		ps, err := c.fetch(ctx)
		if err != nil {
			return err
		}
		products = ps
		return nil
	}
	notify := func(err error, next time.Duration) {
		zctx.From(ctx).Warn("Catalog fetch failed, retrying",
			zap.Error(err),
			zap.Duration("backoff", next),
		)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.MaxElapsedTime = 0 // bounded by attempt count and ctx, not wall clock

	err := backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx),
		notify,
	)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// fetch performs one catalog request and classifies the outcome. Server-side
// failures (>= 500) are returned as retryable; everything else is permanent.
func (c *Client) fetch(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, backoff.Permanent(errors.Wrap(err, "build request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, backoff.Permanent(&UnavailableError{Err: err})
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for keep-alive
		return nil, &UnavailableError{Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(&UnavailableError{Status: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(&UnavailableError{Err: err})
	}

	products, err := decodeProducts(body)
	if err != nil {
		return nil, backoff.Permanent(&UnavailableError{Err: err})
	}
	if len(products) == 0 {
		return nil, backoff.Permanent(ErrEmpty)
	}
	return products, nil
}

// decodeProducts parses {"data": [{id, name, price}, ...]}.
func decodeProducts(data []byte) ([]Product, error) {
	var products []Product

	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			p, err := decodeProduct(d)
			if err != nil {
				return err
			}
			products = append(products, p)
			return nil
		})
	}); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}

	return products, nil
}

func decodeProduct(d *jx.Decoder) (Product, error) {
	var p Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			p.ID = v
			return err
		case "name":
			v, err := d.Str()
			p.Name = v
			return err
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			v, err := decimal.NewFromString(n.String())
			p.Price = v
			return err
		default:
			return d.Skip()
		}
	})
	return p, err
}
