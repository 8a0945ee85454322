// Package adwordstest provides an in-memory AdGroupService served over
// httptest, for exercising the client end to end.
package adwordstest

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// AdGroup is the fake's stored representation.
type AdGroup struct {
	ID           int64  `json:"id,omitempty"`
	CampaignID   int64  `json:"campaignId,omitempty"`
	CampaignName string `json:"campaignName,omitempty"`
	Name         string `json:"name,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Operation is a decoded mutate operation.
type Operation struct {
	Operator string  `json:"operator"`
	Operand  AdGroup `json:"operand"`
}

// FaultError is one entry of an injected fault.
type FaultError struct {
	APIErrorType string `json:"apiErrorType,omitempty"`
	FieldPath    string `json:"fieldPath,omitempty"`
	Trigger      string `json:"trigger,omitempty"`
	ErrorString  string `json:"errorString,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Failure describes a response injected in place of the next call.
type Failure struct {
	Status  int
	Message string
	Errors  []FaultError
	// Raw, when set, is written verbatim instead of a fault envelope.
	Raw string
}

type predicate struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Values   []string `json:"values"`
}

type orderBy struct {
	Field     string `json:"field"`
	SortOrder string `json:"sortOrder"`
}

type selector struct {
	Fields     []string    `json:"fields"`
	Predicates []predicate `json:"predicates"`
	Ordering   []orderBy   `json:"ordering"`
	Paging     *struct {
		StartIndex    int `json:"startIndex"`
		NumberResults int `json:"numberResults"`
	} `json:"paging"`
}

// Server is a fake AdGroupService.
type Server struct {
	*httptest.Server

	// DeveloperToken is required on every request when non-empty.
	DeveloperToken string

	mu          sync.Mutex
	groups      map[int64]AdGroup
	nextID      int64
	getCalls    int
	mutateCalls int
	lastOps     []Operation
	lastVersion string
	lastHeaders http.Header
	failures    map[string][]Failure
	echoNothing bool
}

// NewServer starts a fake bound to 127.0.0.1. The test is skipped when no
// loopback listener is available.
func NewServer(t testing.TB, developerToken string) *Server {
	t.Helper()
	s := &Server{
		DeveloperToken: developerToken,
		groups:         map[int64]AdGroup{},
		nextID:         1000,
		failures:       map[string][]Failure{},
	}

	r := chi.NewRouter()
	r.Post("/api/adwords/cm/{version}/AdGroupService/{method}", s.handle)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("unable to start test server listener: %v", err)
	}
	server := httptest.NewUnstartedServer(r)
	server.Listener = ln
	server.Start()
	s.Server = server
	t.Cleanup(server.Close)
	return s
}

// Add stores ad groups, replacing any with the same id.
func (s *Server) Add(groups ...AdGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range groups {
		if g.Status == "" {
			g.Status = "ENABLED"
		}
		s.groups[g.ID] = g
	}
}

// AdGroup returns the stored ad group with id.
func (s *Server) AdGroup(id int64) (AdGroup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	return g, ok
}

// FailNext queues failures for method ("get" or "mutate"), consumed one per call.
func (s *Server) FailNext(method string, failures ...Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], failures...)
}

// EchoNothing makes mutate apply operations but return an empty rval.
func (s *Server) EchoNothing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.echoNothing = v
}

func (s *Server) GetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

func (s *Server) MutateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateCalls
}

// LastOperations returns the operations of the most recent mutate call.
func (s *Server) LastOperations() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Operation(nil), s.lastOps...)
}

// LastVersion returns the API version path segment of the most recent call.
func (s *Server) LastVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVersion
}

// LastHeaders returns the headers of the most recent call.
func (s *Server) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeaders.Clone()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastVersion = chi.URLParam(r, "version")
	s.lastHeaders = r.Header.Clone()

	switch method {
	case "get":
		s.getCalls++
	case "mutate":
		s.mutateCalls++
	default:
		http.NotFound(w, r)
		return
	}

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeFault(w, http.StatusUnauthorized, Failure{Message: "AuthenticationError.OAUTH_TOKEN_INVALID"})
		return
	}
	if s.DeveloperToken != "" && r.Header.Get("developerToken") != s.DeveloperToken {
		writeFault(w, http.StatusUnauthorized, Failure{Message: "AuthenticationError.DEVELOPER_TOKEN_INVALID"})
		return
	}

	if queued := s.failures[method]; len(queued) > 0 {
		f := queued[0]
		s.failures[method] = queued[1:]
		writeFault(w, f.Status, f)
		return
	}

	switch method {
	case "get":
		s.handleGet(w, r)
	case "mutate":
		s.handleMutate(w, r)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Selector selector `json:"serviceSelector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, http.StatusBadRequest, Failure{Message: "malformed request: " + err.Error()})
		return
	}

	var matched []AdGroup
	for _, g := range s.groups {
		if matches(g, req.Selector.Predicates) {
			matched = append(matched, g)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	// Stable sorts applied last-first leave the first ordering as the primary key.
	for k := len(req.Selector.Ordering) - 1; k >= 0; k-- {
		o := req.Selector.Ordering[k]
		desc := o.SortOrder == "DESCENDING"
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareField(matched[i], matched[j], o.Field)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(matched)
	if p := req.Selector.Paging; p != nil {
		start := min(p.StartIndex, total)
		end := total
		if p.NumberResults > 0 {
			end = min(start+p.NumberResults, total)
		}
		matched = matched[start:end]
	}

	entries := make([]AdGroup, 0, len(matched))
	for _, g := range matched {
		entries = append(entries, project(g, req.Selector.Fields))
	}
	var rval any
	if total > 0 {
		rval = map[string]any{"totalNumEntries": total, "entries": entries}
	} else {
		rval = map[string]any{"totalNumEntries": 0}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rval": rval})
}

func (s *Server) handleMutate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Operations []Operation `json:"operations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, http.StatusBadRequest, Failure{Message: "malformed request: " + err.Error()})
		return
	}
	s.lastOps = req.Operations

	var value []AdGroup
	for i, op := range req.Operations {
		switch op.Operator {
		case "ADD":
			s.nextID++
			g := op.Operand
			g.ID = s.nextID
			if g.Status == "" {
				g.Status = "ENABLED"
			}
			s.groups[g.ID] = g
			value = append(value, g)
		case "SET", "REMOVE":
			g, ok := s.groups[op.Operand.ID]
			if !ok {
				writeFault(w, http.StatusInternalServerError, Failure{
					Message: fmt.Sprintf("[EntityNotFound.INVALID_ID @ operations[%d].operand.id]", i),
					Errors: []FaultError{{
						APIErrorType: "EntityNotFound",
						FieldPath:    fmt.Sprintf("operations[%d].operand.id", i),
						Trigger:      strconv.FormatInt(op.Operand.ID, 10),
						ErrorString:  "EntityNotFound.INVALID_ID",
						Reason:       "INVALID_ID",
					}},
				})
				return
			}
			if op.Operator == "REMOVE" {
				g.Status = "REMOVED"
			} else {
				if op.Operand.Name != "" {
					g.Name = op.Operand.Name
				}
				if op.Operand.Status != "" {
					g.Status = op.Operand.Status
				}
			}
			s.groups[g.ID] = g
			value = append(value, g)
		default:
			writeFault(w, http.StatusInternalServerError, Failure{
				Message: "[OperatorError.OPERATOR_NOT_SUPPORTED]",
				Errors: []FaultError{{
					APIErrorType: "OperatorError",
					FieldPath:    fmt.Sprintf("operations[%d].operator", i),
					Trigger:      op.Operator,
					ErrorString:  "OperatorError.OPERATOR_NOT_SUPPORTED",
				}},
			})
			return
		}
	}

	if s.echoNothing {
		writeJSON(w, http.StatusOK, map[string]any{"rval": map[string]any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rval": map[string]any{"value": value}})
}

func matches(g AdGroup, preds []predicate) bool {
	for _, p := range preds {
		var actual string
		switch p.Field {
		case "Id":
			actual = strconv.FormatInt(g.ID, 10)
		case "Name":
			actual = g.Name
		case "Status":
			actual = g.Status
		case "CampaignId":
			actual = strconv.FormatInt(g.CampaignID, 10)
		default:
			return false
		}
		found := false
		for _, v := range p.Values {
			if v == actual {
				found = true
				break
			}
		}
		switch p.Operator {
		case "EQUALS", "IN":
			if !found {
				return false
			}
		case "NOT_EQUALS", "NOT_IN":
			if found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func compareField(a, b AdGroup, field string) int {
	switch field {
	case "Id":
		return cmp.Compare(a.ID, b.ID)
	case "Name":
		return strings.Compare(a.Name, b.Name)
	case "Status":
		return strings.Compare(a.Status, b.Status)
	case "CampaignId":
		return cmp.Compare(a.CampaignID, b.CampaignID)
	case "CampaignName":
		return strings.Compare(a.CampaignName, b.CampaignName)
	}
	return 0
}

func project(g AdGroup, fields []string) AdGroup {
	var out AdGroup
	for _, f := range fields {
		switch f {
		case "Id":
			out.ID = g.ID
		case "Name":
			out.Name = g.Name
		case "Status":
			out.Status = g.Status
		case "CampaignId":
			out.CampaignID = g.CampaignID
		case "CampaignName":
			out.CampaignName = g.CampaignName
		}
	}
	return out
}

func writeFault(w http.ResponseWriter, status int, f Failure) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if f.Raw != "" {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(f.Raw))
		return
	}
	writeJSON(w, status, map[string]any{
		"fault": map[string]any{"message": f.Message, "errors": f.Errors},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", "fake-request-id")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
