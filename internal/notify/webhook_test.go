package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"partner-portal/internal/config"
	portaldomain "partner-portal/internal/domain/portal"
	"partner-portal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() portaldomain.RequestCreatedEvent {
	return portaldomain.RequestCreatedEvent{
		Request: portaldomain.Request{
			ID:               "req-1",
			PartnerID:        "1234",
			PreferredContact: portaldomain.ContactEmail,
			Urgency:          portaldomain.UrgencyHigh,
			Description:      "Need help.",
			CreatedAt:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),

			ReferringCaseManager: "Sam Rivera",
		},
		Partner: portaldomain.Partner{ID: "1234", Name: "Acme", Email: "a@x.com", Phone: "555-0100"},
	}
}

func TestNewWithoutURL(t *testing.T) {
	assert.Nil(t, New(config.WebhookConfig{URL: "  "}, logger.NewNop()))
}

func TestWebhookDelivers(t *testing.T) {
	received := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload webhookPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook := New(config.WebhookConfig{URL: server.URL, Timeout: time.Second}, logger.NewNop())
	require.NotNil(t, hook)

	ctx, cancel := context.WithCancel(context.Background())
	hook.NotifyRequestCreated(ctx, testEvent())
	cancel()
	hook.Wait()

	select {
	case payload := <-received:
		assert.Equal(t, EventRequestCreated, payload.Event)
		assert.Equal(t, "req-1", payload.Request.ID)
		assert.Equal(t, "Acme", payload.Partner.Name)
		assert.Equal(t, "Sam Rivera", payload.Request.ReferringCaseManager)
		assert.False(t, payload.Timestamp.IsZero())
	default:
		t.Fatal("expected webhook delivery")
	}
}

func TestWebhookFailureDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	hook := New(config.WebhookConfig{URL: server.URL, Timeout: time.Second}, logger.NewNop())
	hook.NotifyRequestCreated(context.Background(), testEvent())
	hook.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookUnreachable(t *testing.T) {
	hook := New(config.WebhookConfig{URL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, logger.NewNop())
	start := time.Now()
	hook.NotifyRequestCreated(context.Background(), testEvent())
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	hook.Wait()
}
