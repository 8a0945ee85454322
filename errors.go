package adwords

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingDeveloperToken    = errors.New("developer token is required. Provide it or set ADWORDS_DEVELOPER_TOKEN")
	ErrMissingClientCustomerID  = errors.New("client customer ID is required. Provide it or set ADWORDS_CLIENT_CUSTOMER_ID")
	ErrMissingOAuth2Credentials = errors.New("OAuth2 client ID and secret plus a refresh or access token are required")
)

// AuthorizationRemediation is printed alongside authorization failures.
const AuthorizationRemediation = "Authorization credentials are not valid. Edit adwords_api.yml for " +
	"OAuth2 client ID and secret and refresh token, or set the ADWORDS_OAUTH2_* environment variables."

// ErrorKind classifies failures surfaced by the client.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindAuthorization
	KindTransport
	KindAPI
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of the first typed error in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var (
		notFound *NotFoundError
		authErr  *AuthorizationError
		httpErr  *HTTPError
		apiErr   *APIError
	)
	switch {
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &authErr):
		return KindAuthorization
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.As(err, &httpErr):
		return KindTransport
	default:
		return KindUnknown
	}
}

// NotFoundError is returned when a lookup matches no entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	entity := e.Entity
	if entity == "" {
		entity = "Entity"
	}
	return fmt.Sprintf("%s with ID %d was not found.", entity, e.ID)
}

// AuthorizationError means the credentials were rejected or could not be refreshed.
type AuthorizationError struct {
	StatusCode int
	Message    string
	RequestID  string
	Err        error
}

func (e *AuthorizationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("adwords authorization error (%d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("adwords authorization error: %s", msg)
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}

// HTTPError is a transport-level failure: the request never reached the
// service, or the response was not a service fault.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
	RequestID  string
	RetryAfter *time.Duration
	Err        error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode == 0 && e.Err != nil {
		return e.Err.Error()
	}
	if e.RequestID != "" {
		return fmt.Sprintf("%d %s (request_id=%s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// APIError is a fault returned by the service after rejecting a request.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []APIErrorDetail
	RequestID  string
	Body       []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.RequestID != "" {
		return fmt.Sprintf("adwords api error (%d): %s (request_id=%s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("adwords api error (%d): %s", e.StatusCode, e.Message)
}

// APIErrorDetail is one entry of a service fault.
type APIErrorDetail struct {
	APIErrorType string `json:"apiErrorType"`
	FieldPath    string `json:"fieldPath"`
	Trigger      string `json:"trigger"`
	ErrorString  string `json:"errorString"`
	Reason       string `json:"reason"`
}

// ErrorField is a single field/value pair of an APIErrorDetail.
type ErrorField struct {
	Name  string
	Value string
}

// Fields returns the non-empty pairs in a stable order.
func (d APIErrorDetail) Fields() []ErrorField {
	all := []ErrorField{
		{Name: "api_error_type", Value: d.APIErrorType},
		{Name: "field_path", Value: d.FieldPath},
		{Name: "trigger", Value: d.Trigger},
		{Name: "error_string", Value: d.ErrorString},
		{Name: "reason", Value: d.Reason},
	}
	fields := make([]ErrorField, 0, len(all))
	for _, f := range all {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

type faultEnvelope struct {
	Fault *struct {
		Message string           `json:"message"`
		Errors  []APIErrorDetail `json:"errors"`
	} `json:"fault"`
}

// apiErrorFromResponse maps a non-2xx response to a typed error.
func apiErrorFromResponse(status int, body []byte, headers http.Header, requestIDHeader string) error {
	requestID := ""
	if headers != nil && requestIDHeader != "" {
		requestID = headers.Get(requestIDHeader)
	}

	var envelope faultEnvelope
	hasFault := json.Unmarshal(body, &envelope) == nil && envelope.Fault != nil

	if status == http.StatusUnauthorized || (status == http.StatusForbidden && (!hasFault || isAuthFault(envelope))) {
		msg := http.StatusText(status)
		if hasFault && envelope.Fault.Message != "" {
			msg = envelope.Fault.Message
		}
		return &AuthorizationError{StatusCode: status, Message: msg, RequestID: requestID}
	}

	if hasFault {
		msg := envelope.Fault.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", status)
		}
		return &APIError{
			StatusCode: status,
			Message:    msg,
			Errors:     envelope.Fault.Errors,
			RequestID:  requestID,
			Body:       body,
		}
	}

	return &HTTPError{
		StatusCode: status,
		Message:    extractErrorMessage(status, body),
		Body:       body,
		RequestID:  requestID,
		RetryAfter: parseRetryAfter(headers),
	}
}

// isAuthFault reports whether a fault carries an AuthenticationError or
// AuthorizationError, as opposed to an entity-level access denial.
func isAuthFault(envelope faultEnvelope) bool {
	if envelope.Fault == nil {
		return false
	}
	isAuth := func(s string) bool {
		return strings.Contains(s, "AuthorizationError") || strings.Contains(s, "AuthenticationError")
	}
	if isAuth(envelope.Fault.Message) {
		return true
	}
	for _, d := range envelope.Fault.Errors {
		if isAuth(d.APIErrorType) || isAuth(d.ErrorString) {
			return true
		}
	}
	return false
}

func extractErrorMessage(status int, body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		if text := http.StatusText(status); text != "" {
			return text
		}
		return fmt.Sprintf("HTTP %d", status)
	}
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := parsed[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if len(raw) > 256 {
		raw = raw[:256] + "…"
	}
	return raw
}

func parseRetryAfter(headers http.Header) *time.Duration {
	if headers == nil {
		return nil
	}
	val := headers.Get("Retry-After")
	if val == "" {
		return nil
	}
	if seconds, err := strconv.Atoi(val); err == nil {
		d := time.Duration(seconds) * time.Second
		return &d
	}
	if t, err := http.ParseTime(val); err == nil {
		d := time.Until(t)
		return &d
	}
	return nil
}
