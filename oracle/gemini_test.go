package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/hrflow/types"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient(GeminiConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gemini-2.0-flash",
	}, nil)
}

func TestGeminiClient_Complete(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotReq geminiRequest
	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "hello "}, {"text": "world"},
				}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	text, err := client.Complete(context.Background(), "say hello", &Options{
		System:      "you are terse",
		Temperature: 0.3,
		MaxTokens:   64,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	require.NotNil(t, gotReq.SystemInstruction)
	assert.Equal(t, "you are terse", gotReq.SystemInstruction.Parts[0].Text)
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, 64, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestGeminiClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		wantCode types.ErrorCode
		retry    bool
	}{
		{"rate limited", http.StatusTooManyRequests, types.ErrRateLimited, true},
		{"server error", http.StatusInternalServerError, types.ErrUpstreamError, true},
		{"gateway timeout", http.StatusGatewayTimeout, types.ErrUpstreamTimeout, true},
		{"bad request", http.StatusBadRequest, types.ErrOracleUnavailable, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": tt.status, "message": "nope"},
				})
			})
			_, err := client.Complete(context.Background(), "hi", nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, types.GetErrorCode(err))
			assert.Equal(t, tt.retry, types.IsRetryable(err))
		})
	}
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	t.Parallel()

	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})
	_, err := client.Complete(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrOracleMalformed, types.GetErrorCode(err))
}

func TestRateLimited_PassThroughAndCancel(t *testing.T) {
	t.Parallel()

	inner := Func(func(ctx context.Context, prompt string, opts *Options) (string, error) {
		return "ok", nil
	})

	rl := NewRateLimited(inner, 100, 1)
	out, err := rl.Complete(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	// Exhaust the burst, then cancel while waiting.
	slow := NewRateLimited(inner, 0.001, 1)
	_, err = slow.Complete(context.Background(), "first", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = slow.Complete(ctx, "second", nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrRateLimited, types.GetErrorCode(err))
}

func TestTokenBudget_EstimateFallback(t *testing.T) {
	t.Parallel()

	b := NewTokenBudget("no-such-encoding", nil)
	text := "abcdefghij" // 10 runes -> ~2 tokens estimated
	assert.Equal(t, 2, b.CountTokens(text))
	assert.Equal(t, "abcd", b.Truncate(text, 1))
	assert.Equal(t, text, b.Truncate(text, 100))
	assert.Equal(t, text, b.Truncate(text, 0))
}
