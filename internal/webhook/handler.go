// Copyright (c) 2026 Cornerstone Real Estate
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package webhook handles inbound message events from the messaging
// provider. Telnyx POSTs a JSON event per received message; only
// "message.received" events are processed. Everything else — unknown
// event types, malformed bodies, wrong methods — is answered with 200 so
// the provider does not redeliver.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
)

// InboundEvent is the provider's webhook envelope.
type InboundEvent struct {
	Data EventData `json:"data"`
}

// EventData carries the event type and the message payload.
type EventData struct {
	EventType string         `json:"event_type"`
	Payload   MessagePayload `json:"payload"`
}

// MessagePayload is the inbound message detail.
type MessagePayload struct {
	From struct {
		PhoneNumber string `json:"phone_number"`
	} `json:"from"`
	Text string `json:"text"`
}

// Processor handles one conversation turn. Implemented by
// *conversation.Handler.
type Processor interface {
	ProcessMessage(ctx context.Context, fromPhone, message string) string
}

// Handler processes provider webhook events.
type Handler struct {
	processor Processor
}

// NewHandler creates a webhook handler.
func NewHandler(processor Processor) *Handler {
	return &Handler{processor: processor}
}

// ServeMessage handles an inbound message webhook request.
//
// Responses:
//   - 200 {"message": "Event ignored"} for anything that is not a
//     well-formed message.received event
//   - 200 {"message": "Referral processed", "response": ...} on success
//   - 500 {"error": ...} only if processing panics
func (h *Handler) ServeMessage(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic while processing webhook", "panic", rec)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": fmt.Sprint(rec),
			})
		}
	}()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Event ignored"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read webhook body", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Event ignored"})
		return
	}

	var event InboundEvent
	if err := json.Unmarshal(body, &event); err != nil {
		slog.Info("webhook body not valid JSON, ignoring", "body_len", len(body))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Event ignored"})
		return
	}

	if event.Data.EventType != "message.received" {
		slog.Debug("ignoring webhook event", "event_type", event.Data.EventType)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Event ignored"})
		return
	}

	response := h.processor.ProcessMessage(r.Context(), event.Data.Payload.From.PhoneNumber, event.Data.Payload.Text)

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Referral processed",
		"response": response,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write webhook response", "error", err)
	}
}

// Serve starts the webhook HTTP server on the given port. It binds the
// port immediately and signals readiness via the returned channel before
// starting to accept connections.
func Serve(ctx context.Context, port int, handler *Handler) (<-chan struct{}, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", handler.ServeMessage)
	mux.HandleFunc("/webhook/", handler.ServeMessage)

	server := &http.Server{
		Handler: mux,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind webhook port %d: %w", port, err)
	}

	ready := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("webhook server shutting down")
		server.Close()
	}()

	go func() {
		slog.Info("webhook server listening", "port", port)
		close(ready)
		if err := server.Serve(ln); err != http.ErrServerClosed {
			slog.Error("webhook server error", "error", err)
		}
	}()

	return ready, nil
}
