package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/askdocs"
	"github.com/hupe1980/askdocs/intent"
	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/model"
	"github.com/hupe1980/askdocs/tool"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticGreeting struct{}

func (staticGreeting) Classify(context.Context, string) intent.Classification {
	return intent.Classification{Intent: intent.IntentGreeting}
}

func newTestServer(llm *model.MockModel) *Server {
	assistant := askdocs.New(llm, staticGreeting{}, tool.NewRegistry())
	return New(assistant)
}

func TestHandleChatQuery_OK(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(message.Assistant{Text: "Hello! Ask me about Azure."})
	router := newTestServer(llm).Router()

	body, _ := json.Marshal(ChatQueryRequest{Text: "hi"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatQueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hello! Ask me about Azure.", resp.Answer)
	assert.Equal(t, intent.IntentGreeting, resp.Intent)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleChatQuery_SessionIDIsEchoed(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(message.Assistant{Text: "first"}, message.Assistant{Text: "second"})
	router := newTestServer(llm).Router()

	body, _ := json.Marshal(ChatQueryRequest{Text: "hi", SessionID: "fixed-session"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ChatQueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fixed-session", resp.SessionID)
}

func TestHandleChatQuery_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing text", body: `{}`},
		{name: "empty text", body: `{"text":""}`},
		{name: "oversized text", body: `{"text":"` + strings.Repeat("x", 4001) + `"}`},
		{name: "malformed json", body: `{`},
	}

	llm := model.NewMockModel("mock", "test")
	router := newTestServer(llm).Router()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/chat/query", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_REQUEST", resp.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	router := newTestServer(llm).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	router := newTestServer(llm).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
