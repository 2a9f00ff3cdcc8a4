package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mpapenbr/racepace/log"
)

// DefaultMaxElapsed limits the time spent retrying a request.
const DefaultMaxElapsed = 30 * time.Second

// HTTPGetter performs json GET requests against a REST API. Requests failing
// with 429, 5xx or network errors are repeated with exponential backoff.
type HTTPGetter struct {
	BaseURL    string
	Client     *http.Client
	MaxElapsed time.Duration
	Logger     *log.Logger
}

// NewHTTPClient returns a client with tracing transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// GetJSON decodes the response of endpoint into a value of type T.
//
//nolint:whitespace // can't make both editor and linter happy
func GetJSON[T any](
	ctx context.Context,
	g *HTTPGetter,
	endpoint string,
	params url.Values,
) (T, error) {
	var ret T
	l := g.Logger
	if l == nil {
		l = log.Default()
	}
	target := g.BaseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		start := time.Now()
		resp, err := g.Client.Do(req)
		if err != nil {
			l.Debug("request failed", log.String("url", target), log.ErrorField(err))
			return err
		}
		defer resp.Body.Close()
		l.Debug("response",
			log.String("url", target),
			log.Int("status", resp.StatusCode),
			log.Duration("duration", time.Since(start)))
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := readAPIError(resp, endpoint)
			if apiErr.Retryable() {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		if err := json.NewDecoder(resp.Body).Decode(&ret); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", endpoint, err))
		}
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = DefaultMaxElapsed
	if g.MaxElapsed > 0 {
		b.MaxElapsedTime = g.MaxElapsed
	}
	notify := func(err error, d time.Duration) {
		l.Info("retrying request",
			log.String("endpoint", endpoint),
			log.Duration("wait", d),
			log.ErrorField(err))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return ret, err
	}
	return ret, nil
}

func readAPIError(resp *http.Response, endpoint string) *APIError {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		Endpoint:  endpoint,
		Message:   http.StatusText(resp.StatusCode),
		Timestamp: time.Now(),
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var detail struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &detail) == nil {
		switch {
		case detail.Detail != nil:
			apiErr.Message = fmt.Sprint(detail.Detail)
		case detail.Message != "":
			apiErr.Message = detail.Message
		}
	}
	return apiErr
}
