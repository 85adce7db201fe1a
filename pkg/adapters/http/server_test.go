package http

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/banktalk/banktalk"
	"github.com/banktalk/banktalk/internal/metrics"
	"github.com/banktalk/banktalk/internal/testutils"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...banktalk.Option) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	oracle := &testutils.ScriptedOracle{
		Routes: map[string]string{"calculate my EMI": "START_EMI"},
	}
	opts = append(opts, banktalk.WithLifecycleHooks(m.Hooks()))
	a, err := banktalk.New(oracle, opts...)
	require.NoError(t, err)

	return NewHandler(a,
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		WithCORSOrigins([]string{"https://bank.example"}),
	), reg
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChat_IssuesSessionID(t *testing.T) {
	h, _ := newTestHandler(t)

	w := postChat(t, h, `{"message": "calculate my EMI"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp banktalk.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "EMI", string(resp.ActiveFlow))
	assert.Equal(t, "principal", resp.AwaitingField)
	assert.Equal(t, "What loan amount should I use for EMI calculation?", resp.Reply)

	// The same session continues the form.
	w = postChat(t, h, `{"session_id": "`+resp.SessionID+`", "message": "500000"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rate", resp.AwaitingField)
}

func TestChat_BadRequests(t *testing.T) {
	h, _ := newTestHandler(t, banktalk.WithMaxInputSize(8))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"Malformed JSON", `{"message": `, http.StatusBadRequest},
		{"Empty Message", `{"session_id": "s", "message": "  "}`, http.StatusBadRequest},
		{"Too Large", `{"session_id": "s", "message": "123456789"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postChat(t, h, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestSessions_CRUD(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusOK, postChat(t, h, `{"session_id": "abc", "message": "calculate my EMI"}`).Code)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions": ["abc"]}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"awaiting_field":"principal"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/abc", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthInfoMetrics(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	assert.Contains(t, w.Body.String(), banktalk.Version)

	postChat(t, h, `{"session_id": "m", "message": "what is a credit card?"}`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `banktalk_turns_total{route="rag"} 1`)
}

func TestCORS(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://bank.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://bank.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents_Session(t *testing.T) {
	oracle := &testutils.ScriptedOracle{Routes: map[string]string{"calculate my EMI": "START_EMI"}}
	a, err := banktalk.New(oracle)
	require.NoError(t, err)
	h := NewHandler(a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(sub, httptest.NewRequest(http.MethodGet, "/events?session_id=sess-1&watch=slots,flow", nil).WithContext(ctx))
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"session_id": "sess-1", "message": "calculate my EMI"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done // the recorder is only read once the handler has returned

	output := sub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"awaiting_field":"principal"`)
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchesWatch(t *testing.T) {
	assert.True(t, matchesWatch(`{"slots":{"rate":9}}`, []string{"slots"}))
	assert.False(t, matchesWatch(`{"slots":{"rate":9}}`, []string{"status"}))
	assert.True(t, matchesWatch(`{"paused":true}`, []string{" status "}))
	assert.True(t, matchesWatch(`not json`, []string{"flow"}))
}

type cannedAssistant struct {
	resp *banktalk.Response
}

func (c cannedAssistant) Chat(_ context.Context, sessionID, _ string) (*banktalk.Response, error) {
	r := *c.resp
	r.SessionID = sessionID
	return &r, nil
}

func (cannedAssistant) Session(context.Context, string) (*domain.ConversationState, error) {
	return nil, domain.ErrSessionNotFound
}

func (cannedAssistant) Delete(context.Context, string) error { return nil }

func (cannedAssistant) Sessions(context.Context) ([]string, error) { return nil, nil }

func TestChat_UnencodableOutputIs500(t *testing.T) {
	h := NewHandler(cannedAssistant{resp: &banktalk.Response{
		Reply:  "done",
		Output: map[string]float64{"emi": math.Inf(1)},
	}})

	w := postChat(t, h, `{"session_id": "s", "message": "hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "failed to encode response"}`, w.Body.String())
}

func TestChat_SourcesAreStructured(t *testing.T) {
	h := NewHandler(cannedAssistant{resp: &banktalk.Response{
		Reply:   "Processing fee is 0.5%.",
		Route:   domain.RouteRAG,
		Sources: []domain.Source{{PDFName: "fees.pdf", PageNum: 3}},
	}})

	w := postChat(t, h, `{"session_id": "s", "message": "what is the processing fee?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sources []map[string]any `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Sources, 1)
	assert.Equal(t, "fees.pdf", body.Sources[0]["pdf_name"])
	assert.EqualValues(t, 3, body.Sources[0]["page_num"])
}
