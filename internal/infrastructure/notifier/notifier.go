package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

// CallbackNotifier POSTs order events as JSON to a fixed URL, typically the
// mailer that sends approval emails.
type CallbackNotifier struct {
	callbackURL string
	client      *http.Client
}

func NewCallbackNotifier(callbackURL string, timeout time.Duration) *CallbackNotifier {
	return &CallbackNotifier{
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: timeout},
	}
}

func (n *CallbackNotifier) PublishOrderEvent(event domain.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal callback: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, n.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", event.Type)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}
