package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"partner-portal/internal/config"
	portaldomain "partner-portal/internal/domain/portal"
	"partner-portal/pkg/logger"
)

const EventRequestCreated = "request.created"

// Webhook posts request.created events to an automation endpoint. Delivery
// is fire-and-forget: one attempt in a background goroutine, failures are
// logged and dropped.
type Webhook struct {
	url    string
	client *http.Client
	log    logger.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

type webhookPayload struct {
	Event     string         `json:"event"`
	Request   requestPayload `json:"request"`
	Partner   partnerPayload `json:"partner"`
	Timestamp time.Time      `json:"timestamp"`
}

type requestPayload struct {
	ID                string    `json:"id"`
	PartnerID         string    `json:"partnerId"`
	PreferredContact  string    `json:"preferredContact"`
	Urgency           string    `json:"urgency"`
	RequestType       string    `json:"requestType,omitempty"`
	Description       string    `json:"description"`
	RecipientName     string    `json:"recipientName,omitempty"`
	RecipientAddress  string    `json:"recipientAddress,omitempty"`
	RecipientEmail    string    `json:"recipientEmail,omitempty"`
	RecipientPhone    string    `json:"recipientPhone,omitempty"`
	DescriptionOfNeed string    `json:"descriptionOfNeed,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`

	ReferringCaseManager string `json:"referringCaseManager,omitempty"`
	CaseManagerEmail     string `json:"caseManagerEmail,omitempty"`
	CaseManagerPhone     string `json:"caseManagerPhone,omitempty"`
}

type partnerPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// New returns nil when no URL is configured; the service treats a nil
// notifier as disabled.
func New(cfg config.WebhookConfig, log logger.Logger) *Webhook {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log.With("component", "webhook"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (w *Webhook) NotifyRequestCreated(ctx context.Context, event portaldomain.RequestCreatedEvent) {
	body, err := json.Marshal(w.payload(event))
	if err != nil {
		w.log.InternalError("webhook.notify: encode payload failed", err, "request_id", event.Request.ID)
		return
	}

	ctx = context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.send(ctx, body); err != nil {
			w.log.InternalError("webhook.notify: delivery failed", err, "request_id", event.Request.ID)
			return
		}
		w.log.Debug("webhook.notify: delivered", "request_id", event.Request.ID)
	}()
}

// Wait blocks until in-flight deliveries finish. Called on shutdown.
func (w *Webhook) Wait() {
	w.wg.Wait()
}

func (w *Webhook) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (w *Webhook) payload(event portaldomain.RequestCreatedEvent) webhookPayload {
	request := event.Request
	return webhookPayload{
		Event: EventRequestCreated,
		Request: requestPayload{
			ID:                request.ID,
			PartnerID:         request.PartnerID,
			PreferredContact:  request.PreferredContact,
			Urgency:           request.Urgency,
			RequestType:       request.RequestType,
			Description:       request.Description,
			RecipientName:     request.RecipientName,
			RecipientAddress:  request.RecipientAddress,
			RecipientEmail:    request.RecipientEmail,
			RecipientPhone:    request.RecipientPhone,
			DescriptionOfNeed: request.DescriptionOfNeed,
			CreatedAt:         request.CreatedAt,

			ReferringCaseManager: request.ReferringCaseManager,
			CaseManagerEmail:     request.CaseManagerEmail,
			CaseManagerPhone:     request.CaseManagerPhone,
		},
		Partner: partnerPayload{
			ID:    event.Partner.ID,
			Name:  event.Partner.Name,
			Email: event.Partner.Email,
			Phone: event.Partner.Phone,
		},
		Timestamp: w.now(),
	}
}
