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

// Package conversation implements the referral conversation flow: given
// an inbound (sender, text) pair it classifies the message, extracts and
// persists referral candidates, generates and sends a reply, and records
// the exchange. Every collaborator failure is mapped to a safe default so
// a conversation turn always completes with a reply.
package conversation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cornerstone/referral/internal/models"
)

// Replies used when the normal flow cannot run.
const (
	// GenericReply goes to unknown senders and is the turn's last-resort
	// result. Unknown numbers may be referred prospects replying directly,
	// so they are not treated as tenants and nothing is persisted.
	GenericReply = "Thanks for your message! I'll have our team follow up."

	// DeclineAck acknowledges a tenant opting out.
	DeclineAck = "No worries! Thanks for letting me know. Have a great day!"

	// fallbackReply replaces a reply the model failed to generate.
	fallbackReply = "Thanks for your message! Do you know anyone who might be looking for housing?"
)

// Store is the persistence surface the handler needs.
// Implemented by *store.Store.
type Store interface {
	GetTenantByPhone(ctx context.Context, phone string) (*models.Tenant, error)
	UpdateTenantStatus(ctx context.Context, phone, status string) error
	AppendTenantMessage(ctx context.Context, phone, message, role string) error
	CreateReferralLead(ctx context.Context, ref models.Referral, referrerPhone string) (bool, error)
}

// Extractor turns free text into structured referral candidates.
// Implemented by *llm.Client.
type Extractor interface {
	ExtractReferrals(ctx context.Context, message string) ([]models.Referral, error)
}

// Responder generates the outbound reply. Implemented by *llm.Client.
type Responder interface {
	GenerateReply(ctx context.Context, tenant *models.Tenant, message string, referrals []models.Referral) (string, error)
}

// Sender delivers a single outbound message. Implemented by *sms.Client.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// LeadPublisher hands newly created leads to the downstream nurture
// pipeline. Implemented by *queue.Publisher; may be nil.
type LeadPublisher interface {
	PublishLeadEvent(ctx context.Context, lead models.Lead, referrerPhone string) error
}

// Handler processes inbound referral conversation turns.
type Handler struct {
	store     Store
	extractor Extractor
	responder Responder
	sender    Sender
	publisher LeadPublisher
}

// NewHandler creates a conversation handler with its collaborators.
// The publisher is optional.
func NewHandler(store Store, extractor Extractor, responder Responder, sender Sender, publisher LeadPublisher) *Handler {
	return &Handler{
		store:     store,
		extractor: extractor,
		responder: responder,
		sender:    sender,
		publisher: publisher,
	}
}

// ProcessMessage handles one inbound message from a tenant and returns
// the reply text. It never returns an empty string and never propagates
// a collaborator failure to the caller.
func (h *Handler) ProcessMessage(ctx context.Context, fromPhone, message string) string {
	tenant, err := h.store.GetTenantByPhone(ctx, fromPhone)
	if err != nil {
		slog.Error("tenant lookup failed", "phone", fromPhone, "error", err)
		return GenericReply
	}
	if tenant == nil {
		// Not a tenant — possibly a referred prospect replying directly.
		slog.Info("message from unknown number", "phone", fromPhone)
		return GenericReply
	}

	if IsDeclining(message) {
		if err := h.store.UpdateTenantStatus(ctx, fromPhone, models.TenantStatusDeclined); err != nil {
			slog.Error("failed to mark tenant declined", "phone", fromPhone, "error", err)
		}
		slog.Info("tenant declined referral request", "phone", fromPhone)
		// Decline exchanges are not appended to the conversation log.
		return DeclineAck
	}

	referrals, err := h.extractor.ExtractReferrals(ctx, message)
	if err != nil {
		slog.Error("referral extraction failed", "phone", fromPhone, "error", err)
		referrals = nil
	}

	for _, ref := range referrals {
		if !ref.Identified() {
			continue
		}
		ref.Phone = models.NormalizePhone(ref.Phone)
		created, err := h.store.CreateReferralLead(ctx, ref, fromPhone)
		if err != nil {
			slog.Error("failed to persist referral lead",
				"referrer", fromPhone,
				"lead_phone", ref.Phone,
				"error", err,
			)
			continue
		}
		if created {
			h.publishLead(ctx, ref, fromPhone)
		}
	}

	reply, err := h.responder.GenerateReply(ctx, tenant, message, referrals)
	if err != nil {
		slog.Error("reply generation failed", "phone", fromPhone, "error", err)
		reply = fallbackReply
	}

	if err := h.sender.Send(ctx, fromPhone, reply); err != nil {
		slog.Error("failed to send reply", "phone", fromPhone, "error", err)
	}

	if err := h.store.AppendTenantMessage(ctx, fromPhone, message, "tenant"); err != nil {
		slog.Error("failed to log inbound message", "phone", fromPhone, "error", err)
	}
	if err := h.store.AppendTenantMessage(ctx, fromPhone, reply, "assistant"); err != nil {
		slog.Error("failed to log reply", "phone", fromPhone, "error", err)
	}

	return reply
}

// publishLead enqueues a just-created lead for the nurture pipeline.
// Publication is best-effort; failures are logged and do not affect the turn.
func (h *Handler) publishLead(ctx context.Context, ref models.Referral, referrerPhone string) {
	if h.publisher == nil {
		return
	}
	lead := models.Lead{
		Phone:          ref.Phone,
		Name:           ref.Name,
		Email:          ref.Email,
		ChatHistory:    fmt.Sprintf("Referral from %s\n", referrerPhone),
		ReferralSource: fmt.Sprintf("Referred by %s", referrerPhone),
	}
	if err := h.publisher.PublishLeadEvent(ctx, lead, referrerPhone); err != nil {
		slog.Error("failed to publish lead event",
			"lead_phone", ref.Phone,
			"referrer", referrerPhone,
			"error", err,
		)
	}
}
