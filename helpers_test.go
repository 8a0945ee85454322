package adwords

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const (
	testDeveloperToken   = "dev-token"
	testClientCustomerID = "123-456-7890"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("unable to start test server listener: %v", err)
	}
	server := httptest.NewUnstartedServer(handler)
	server.Listener = ln
	server.Start()
	return server
}

// testConfig returns a Config with a standing access token, so no token
// endpoint is contacted.
func testConfig(baseURL string) Config {
	return Config{
		DeveloperToken:       testDeveloperToken,
		ClientCustomerID:     testClientCustomerID,
		UserAgent:            "adwords-test",
		OAuth2AccessToken:    "access-token",
		BaseURL:              baseURL,
		APIVersion:           "v201406",
		Timeout:              time.Second,
		MaxRetries:           0,
		RetryInitialInterval: 5 * time.Millisecond,
		RetryMaxInterval:     5 * time.Millisecond,
		RetryMultiplier:      1,
		RetryJitter:          0,
		RequestIDHeader:      "X-Request-ID",
		AutoRequestID:        true,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
