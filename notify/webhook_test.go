package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/hrflow/types"
)

func TestWebhook_Send(t *testing.T) {
	t.Parallel()

	var got Message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	wh, err := NewWebhook(WebhookConfig{URL: srv.URL, AuthToken: "secret"}, nil)
	require.NoError(t, err)

	msg := InterviewInvitation("dana@example.com", "Dana", "Engineer", "2026-09-01", "10:00", "HQ", "Sam")
	require.NoError(t, wh.Send(context.Background(), msg))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "dana@example.com", got.To)
	assert.Equal(t, "Interview Scheduled - Engineer", got.Subject)
	assert.Equal(t, "interview_invitation", got.Kind)
}

func TestWebhook_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh, err := NewWebhook(WebhookConfig{URL: srv.URL, MaxRetries: 3, Backoff: time.Millisecond}, nil)
	require.NoError(t, err)

	require.NoError(t, wh.Send(context.Background(), &Message{To: "x", Subject: "s", Body: "b"}))
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhook_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	wh, err := NewWebhook(WebhookConfig{URL: srv.URL, MaxRetries: 3, Backoff: time.Millisecond}, nil)
	require.NoError(t, err)

	err = wh.Send(context.Background(), &Message{To: "x", Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, types.ErrExternalService, types.GetErrorCode(err))
}

func TestWebhook_RequiresURL(t *testing.T) {
	t.Parallel()

	_, err := NewWebhook(WebhookConfig{}, nil)
	assert.Error(t, err)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	require.NoError(t, rec.Send(context.Background(), WelcomeEmail("a@x.com", "Ada", "Acme", "2026-09-01")))
	require.NoError(t, rec.Send(context.Background(), RejectionNotice("b@x.com", "Bo", "Analyst")))

	sent := rec.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "welcome", sent[0].Kind)
	assert.Equal(t, "rejection", sent[1].Kind)

	msg, ok := rec.SentAt(1)
	require.True(t, ok)
	assert.Contains(t, msg.Subject, "Analyst")

	_, ok = rec.SentAt(5)
	assert.False(t, ok)
}

func TestOnboardingChecklistNumbersTasks(t *testing.T) {
	t.Parallel()

	msg := OnboardingChecklist("a@x.com", "Ada", "Acme", []string{"Sign forms", "Collect laptop"})
	assert.Contains(t, msg.Body, "1. Sign forms")
	assert.Contains(t, msg.Body, "2. Collect laptop")
}
