package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/tagship/pkg/controller/http"
	"github.com/m-mizutani/tagship/pkg/domain/model"
)

// MockWebhookUseCase records processed events
type MockWebhookUseCase struct {
	mu     sync.Mutex
	events []*model.WebhookEvent
}

func (m *MockWebhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockWebhookUseCase) Events() []*model.WebhookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.WebhookEvent{}, m.events...)
}

// generateSignature generates HMAC-SHA256 signature for testing
func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(handler *controller.WebhookHandler, eventType string, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(payload))
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "test-delivery")
	req.Header.Set("X-Hub-Signature-256", signature)

	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestWebhookHandler_SignatureVerification(t *testing.T) {
	secret := "test-secret"
	payload := []byte(`{"action":"published","release":{"tag_name":"v1.0.0"},"repository":{"full_name":"m-mizutani/diamant"},"sender":{"login":"m-mizutani"}}`)

	tests := []struct {
		name           string
		signature      string
		wantStatusCode int
	}{
		{
			name:           "valid signature",
			signature:      generateSignature(secret, payload),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid signature",
			signature:      "sha256=deadbeef",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "missing signature",
			signature:      "",
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &MockWebhookUseCase{}
			handler := controller.NewWebhookHandler(secret, uc)

			rec := postWebhook(handler, "release", payload, tt.signature)
			gt.Number(t, rec.Code).Equal(tt.wantStatusCode)

			if tt.wantStatusCode != http.StatusOK {
				gt.Number(t, len(uc.Events())).Equal(0)
			}
		})
	}
}

func TestWebhookHandler_ReleaseEventExtractsTag(t *testing.T) {
	secret := "test-secret"
	uc := &MockWebhookUseCase{}
	handler := controller.NewWebhookHandler(secret, uc)

	payload := []byte(`{"action":"published","release":{"tag_name":"v2.1.0"},"repository":{"full_name":"m-mizutani/diamant"},"sender":{"login":"m-mizutani"}}`)
	rec := postWebhook(handler, "release", payload, generateSignature(secret, payload))
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	events := uc.Events()
	gt.Number(t, len(events)).Equal(1)
	gt.Value(t, events[0].Type).Equal(model.EventTypeRelease)
	gt.Value(t, events[0].Action).Equal("published")
	gt.Value(t, events[0].Tag).Equal("v2.1.0")
	gt.Value(t, events[0].Repository).Equal("m-mizutani/diamant")
}

func TestWebhookHandler_PushEventExtractsTag(t *testing.T) {
	secret := "test-secret"
	uc := &MockWebhookUseCase{}
	handler := controller.NewWebhookHandler(secret, uc)

	t.Run("tag push", func(t *testing.T) {
		payload := []byte(`{"ref":"refs/tags/v3.0.0","repository":{"full_name":"m-mizutani/diamant"},"sender":{"login":"m-mizutani"}}`)
		rec := postWebhook(handler, "push", payload, generateSignature(secret, payload))
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		events := uc.Events()
		last := events[len(events)-1]
		gt.Value(t, last.Type).Equal(model.EventTypePush)
		gt.Value(t, last.Tag).Equal("v3.0.0")
	})

	t.Run("branch push has no tag", func(t *testing.T) {
		payload := []byte(`{"ref":"refs/heads/main","repository":{"full_name":"m-mizutani/diamant"},"sender":{"login":"m-mizutani"}}`)
		rec := postWebhook(handler, "push", payload, generateSignature(secret, payload))
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		events := uc.Events()
		last := events[len(events)-1]
		gt.Value(t, last.Tag).Equal("")
		gt.Value(t, last.IsReleaseTrigger()).Equal(false)
	})
}
