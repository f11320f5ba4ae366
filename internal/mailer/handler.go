package mailer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"sync/atomic"
)

// Handler accepts outbound mail and records the delivery in the log.
type Handler struct {
	logger *slog.Logger
	sent   atomic.Int64
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := mail.ParseAddress(req.To); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid recipient")
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		h.writeError(w, http.StatusBadRequest, "missing subject")
		return
	}

	n := h.sent.Add(1)
	h.logger.Info("email sent", "to", req.To, "subject", req.Subject, "bytes", len(req.Body), "seq", n)

	h.writeJSON(w, http.StatusOK, sendResponse{Status: "sent"})
}

// Sent reports how many messages were accepted since start.
func (h *Handler) Sent() int64 {
	return h.sent.Load()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
