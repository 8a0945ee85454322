package adwords

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

// maxLoggedBody caps how much of a response body debug logging prints.
const maxLoggedBody = 512

// tracer runs the configured request/response hooks and, in debug mode,
// logs each service call with credentials masked.
type tracer struct {
	debug  bool
	logger Logger
	redact map[string]struct{}
	idKey  string
	before []RequestHook
	after  []ResponseHook
}

func newTracer(cfg Config, logger Logger) *tracer {
	t := &tracer{
		debug:  cfg.Debug && logger != nil,
		logger: logger,
		redact: make(map[string]struct{}, len(cfg.RedactHeaders)),
		idKey:  cfg.RequestIDHeader,
		before: cfg.BeforeRequest,
		after:  cfg.AfterResponse,
	}
	for _, h := range cfg.RedactHeaders {
		t.redact[http.CanonicalHeaderKey(h)] = struct{}{}
	}
	return t
}

func (t *tracer) logf(format string, args ...any) {
	if !t.debug {
		return
	}
	t.logger.Printf(format, args...)
}

func (t *tracer) beforeSend(sc serviceCall, req *http.Request, attempt int) {
	for i, hook := range t.before {
		t.guard("request", i, func() { hook(req) })
	}
	t.logf("%s request attempt=%d url=%s headers=%v", sc, attempt+1, req.URL, t.masked(req.Header))
}

func (t *tracer) afterReceive(sc serviceCall, resp *http.Response, body []byte, took time.Duration) {
	t.logf("%s response status=%d took=%s request_id=%s body=%s",
		sc, resp.StatusCode, took.Round(time.Millisecond), resp.Header.Get(t.idKey), truncate(string(body), maxLoggedBody))
	for i, hook := range t.after {
		t.guard("response", i, func() { hook(resp, body) })
	}
}

// guard runs a caller hook, logging rather than propagating its panic.
func (t *tracer) guard(kind string, i int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logf("%s hook %d panicked: %v", kind, i, r)
		}
	}()
	fn()
}

// masked returns a copy of h with every redacted header replaced.
func (t *tracer) masked(h http.Header) http.Header {
	out := h.Clone()
	for k := range out {
		if _, ok := t.redact[http.CanonicalHeaderKey(k)]; ok {
			out.Set(k, "[redacted]")
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func newRequestID() string {
	buf := make([]byte, 12)
	if _, err := crand.Read(buf); err != nil {
		return fmt.Sprintf("adwords-%d", time.Now().UnixNano())
	}
	return "adwords-" + hex.EncodeToString(buf)
}
