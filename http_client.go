package adwords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
)

type httpClient struct {
	client *http.Client
	cfg    Config
	auth   Auth
	trace  *tracer
}

// serviceCall is one POST to {service}/{method}. Only reads set retryable;
// a mutation that timed out may still have been applied.
type serviceCall struct {
	service   string
	method    string
	body      []byte
	retryable bool
}

func (sc serviceCall) String() string {
	return sc.service + "." + sc.method
}

func newHTTPClient(cfg Config) *httpClient {
	cfg = withTransportDefaults(cfg)

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
	if cfg.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(cfg.ProxyURL)
	}

	logger := cfg.Logger
	if cfg.Debug && logger == nil {
		logger = log.New(os.Stderr, "adwords ", log.LstdFlags)
	}

	c := &httpClient{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		trace: newTracer(cfg, logger),
	}
	c.auth = newAuth(cfg, c.client)
	return c
}

// withTransportDefaults fills zero values left by callers that build a
// Config by hand instead of through LoadConfigWithParams.
func withTransportDefaults(cfg Config) Config {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryInitialInterval == 0 {
		cfg.RetryInitialInterval = defaultRetryInitial
	}
	if cfg.RetryMaxInterval == 0 {
		cfg.RetryMaxInterval = defaultRetryMax
	}
	if cfg.RetryMultiplier == 0 {
		cfg.RetryMultiplier = defaultRetryMultiplier
	}
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = defaultRequestIDHeader
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = defaultMaxIdlePerHost
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = defaultIdleConnTimeout
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	return cfg
}

func (c *httpClient) close() {
	if t, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
}

// serviceURL returns {BaseURL}/api/adwords/cm/{version}/{service}/{method}.
func (c *httpClient) serviceURL(sc serviceCall) (string, error) {
	version, err := runtime.StyleParamWithLocation("simple", false, "version", runtime.ParamLocationPath, c.cfg.APIVersion)
	if err != nil {
		return "", fmt.Errorf("encode api version: %w", err)
	}
	base := strings.TrimSuffix(c.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/api/adwords/cm/%s/%s/%s", base, version, sc.service, sc.method), nil
}

// call posts payload as JSON to service/method and decodes the reply into out.
func (c *httpClient) call(ctx context.Context, service, method string, payload, out any, retryable bool) error {
	sc := serviceCall{service: service, method: method, retryable: retryable}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", sc, err)
		}
		sc.body = body
	}

	data, err := c.send(ctx, sc)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", sc, err)
	}
	return nil
}

// send delivers sc, retrying transient failures when sc is retryable.
// Context errors are returned unwrapped so callers can match them.
func (c *httpClient) send(ctx context.Context, sc serviceCall) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target, err := c.serviceURL(sc)
	if err != nil {
		return nil, err
	}

	policy := newRetryPolicy(c.cfg, sc.retryable)
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, resp, err := c.attempt(ctx, sc, target, attempt)
		if err == nil {
			return data, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !policy.retry(attempt, resp, err) {
			return nil, err
		}

		delay := policy.delay(attempt, resp)
		c.trace.logf("%s: retrying in %s after attempt %d/%d: %v", sc, delay, attempt+1, policy.maxAttempts, err)
		if err := sleepWithContext(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// attempt performs a single round trip. resp is non-nil whenever the server
// answered, so the retry policy can inspect the status and Retry-After.
func (c *httpClient) attempt(ctx context.Context, sc serviceCall, target string, attempt int) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(sc.body))
	if err != nil {
		return nil, nil, err
	}
	if err := c.setHeaders(req); err != nil {
		return nil, nil, err
	}
	c.trace.beforeSend(sc, req, attempt)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, &HTTPError{Message: err.Error(), Err: err}
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, Message: "read response", Err: readErr}
	}
	c.trace.afterReceive(sc, resp, body, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp, nil
	}
	return nil, resp, apiErrorFromResponse(resp.StatusCode, body, resp.Header, c.cfg.RequestIDHeader)
}

// setHeaders layers auth headers, configured extras and the JSON content
// headers, then stamps a request id when one is configured.
func (c *httpClient) setHeaders(req *http.Request) error {
	authHeaders, err := c.auth.Headers()
	if err != nil {
		return err
	}
	for _, set := range []http.Header{authHeaders, c.cfg.ExtraHeaders} {
		for k, vals := range set {
			for _, v := range vals {
				req.Header.Add(k, v)
			}
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if id := c.requestID(req.Header); id != "" {
		req.Header.Set(c.cfg.RequestIDHeader, id)
	}
	return nil
}

func (c *httpClient) requestID(h http.Header) string {
	switch {
	case c.cfg.RequestIDHeader == "" || h.Get(c.cfg.RequestIDHeader) != "":
		return ""
	case c.cfg.DefaultRequestID != "":
		return c.cfg.DefaultRequestID
	case c.cfg.AutoRequestID:
		return newRequestID()
	}
	return ""
}
