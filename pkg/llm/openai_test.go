package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "test-model"})
}

func TestOpenAIProvider_ToolCalls(t *testing.T) {
	var received map[string]interface{}
	provider := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"tool_calls": [
						{"id": "c1", "type": "function", "function": {"name": "record_review_analysis", "arguments": "{\"sentiment\":\"negative\",\"urgency\":\"high\"}"}},
						{"id": "c2", "type": "function", "function": {"name": "draft_review_replies", "arguments": "{\"replies\":[]}"}}
					]
				}
			}]
		}`))
	})

	completion, err := provider.Complete(context.Background(), CompletionRequest{
		Prompt:       "analyze",
		Capabilities: []Capability{CapabilityAnalysis, CapabilityReplies},
	})
	require.NoError(t, err)

	assert.Equal(t, KindToolCalls, completion.Kind)
	require.Len(t, completion.ToolCalls, 2)
	assert.Equal(t, ToolRecordAnalysis, completion.ToolCalls[0].Name)
	assert.JSONEq(t, `{"sentiment":"negative","urgency":"high"}`, string(completion.ToolCalls[0].Arguments))

	tools, ok := received["tools"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tools, 2)
	assert.Equal(t, "required", received["tool_choice"])
}

func TestOpenAIProvider_SingleToolIsForced(t *testing.T) {
	var received map[string]interface{}
	provider := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"replies\":[]}"}}]}`))
	})

	completion, err := provider.Complete(context.Background(), CompletionRequest{
		Prompt:       "reply",
		Capabilities: []Capability{CapabilityReplies},
	})
	require.NoError(t, err)
	assert.Equal(t, KindText, completion.Kind)

	choice, ok := received["tool_choice"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "function", choice["type"])
	assert.Equal(t, ToolDraftReplies, choice["function"].(map[string]interface{})["name"])
}

func TestOpenAIProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`, wantErr: ErrRateLimited},
		{name: "payment required", status: http.StatusPaymentRequired, body: `{"error":{"message":"credits","type":"billing"}}`, wantErr: ErrPaymentRequired},
		{name: "non json error", status: http.StatusBadGateway, body: `bad gateway`, wantErr: ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p", Capabilities: []Capability{CapabilityAnalysis}})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	provider := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
