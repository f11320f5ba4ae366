package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

// Handler turns order lifecycle events into customer emails.
type Handler struct {
	mailerURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHandler(mailerURL string, client *http.Client, logger *slog.Logger) *Handler {
	return &Handler{
		mailerURL:  mailerURL,
		httpClient: client,
		logger:     logger,
	}
}

type message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Handle is a messaging.HandlerFunc. Malformed payloads are logged and
// skipped so a poison message cannot stall the partition.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("dropping malformed order event", "error", err)
		return nil
	}

	msg, ok := composeMessage(event)
	if !ok {
		h.logger.Warn("ignoring order event", "type", event.Type, "event_id", event.EventID)
		return nil
	}

	h.logger.Info("processing order event", "type", event.Type, "order_id", event.OrderID, "event_id", event.EventID)

	if err := h.send(ctx, msg); err != nil {
		h.logger.Error("failed to send notification", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("notify order %d: %w", event.OrderID, err)
	}

	h.logger.Info("notification sent", "type", event.Type, "order_id", event.OrderID)
	return nil
}

func composeMessage(event domain.OrderEvent) (message, bool) {
	if event.Email == "" {
		return message{}, false
	}

	switch event.Type {
	case domain.OrderEventConfirmed:
		return message{
			To:      event.Email,
			Subject: fmt.Sprintf("Order #%d received", event.OrderID),
			Body: fmt.Sprintf("We got your order #%d with %d item(s), total %d. We will let you know when it is ready.",
				event.OrderID, len(event.ItemIDs), event.TotalPrice),
		}, true
	case domain.OrderEventCompleted:
		return message{
			To:      event.Email,
			Subject: fmt.Sprintf("Order #%d is ready", event.OrderID),
			Body:    fmt.Sprintf("Your order #%d is ready for pickup.", event.OrderID),
		}, true
	}
	return message{}, false
}

func (h *Handler) send(ctx context.Context, msg message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.mailerURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailer returned status %d", resp.StatusCode)
	}

	return nil
}
