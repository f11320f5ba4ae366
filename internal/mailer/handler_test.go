package mailer

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_HandleSend(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid message", body: `{"to":"a@x.com","subject":"Order #1 received","body":"thanks"}`, wantStatus: http.StatusOK},
		{name: "malformed json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "bad recipient", body: `{"to":"nobody","subject":"hi"}`, wantStatus: http.StatusBadRequest},
		{name: "empty subject", body: `{"to":"a@x.com","subject":"  "}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleSend(rec, httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}

	assert.Equal(t, int64(1), h.Sent())
}
