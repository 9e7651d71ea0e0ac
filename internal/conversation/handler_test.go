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

package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cornerstone/referral/internal/models"
)

// fakeStore implements Store in memory and records every mutation.
type fakeStore struct {
	tenants map[string]*models.Tenant
	leads   map[string]*models.Lead

	lookupErr error
	leadErr   error

	statusUpdates  []string // "phone=status"
	appended       []string // "role:message"
	referralCounts map[string]int
}

func newFakeStore(tenants ...*models.Tenant) *fakeStore {
	s := &fakeStore{
		tenants:        make(map[string]*models.Tenant),
		leads:          make(map[string]*models.Lead),
		referralCounts: make(map[string]int),
	}
	for _, t := range tenants {
		s.tenants[t.Phone] = t
	}
	return s
}

func (s *fakeStore) GetTenantByPhone(ctx context.Context, phone string) (*models.Tenant, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.tenants[phone], nil
}

func (s *fakeStore) UpdateTenantStatus(ctx context.Context, phone, status string) error {
	s.statusUpdates = append(s.statusUpdates, phone+"="+status)
	if t := s.tenants[phone]; t != nil {
		t.Status = status
	}
	return nil
}

func (s *fakeStore) AppendTenantMessage(ctx context.Context, phone, message, role string) error {
	s.appended = append(s.appended, role+":"+message)
	return nil
}

func (s *fakeStore) CreateReferralLead(ctx context.Context, ref models.Referral, referrerPhone string) (bool, error) {
	if s.leadErr != nil {
		return false, s.leadErr
	}
	source := fmt.Sprintf("Referred by %s", referrerPhone)
	if existing, ok := s.leads[ref.Phone]; ok {
		if existing.ReferralSource == "" {
			existing.ReferralSource = source
			if existing.Name == "" {
				existing.Name = ref.Name
			}
		}
		return false, nil
	}
	s.leads[ref.Phone] = &models.Lead{
		Phone:          ref.Phone,
		Name:           ref.Name,
		Email:          ref.Email,
		ReferralSource: source,
	}
	s.referralCounts[referrerPhone]++
	return true, nil
}

func (s *fakeStore) mutated() bool {
	return len(s.statusUpdates) > 0 || len(s.appended) > 0 || len(s.leads) > 0
}

// fakeExtractor returns canned referrals and records whether it was called.
type fakeExtractor struct {
	refs   []models.Referral
	err    error
	called bool
}

func (f *fakeExtractor) ExtractReferrals(ctx context.Context, message string) ([]models.Referral, error) {
	f.called = true
	return f.refs, f.err
}

// fakeResponder returns a canned reply and records whether it was called.
type fakeResponder struct {
	reply  string
	err    error
	called bool
}

func (f *fakeResponder) GenerateReply(ctx context.Context, tenant *models.Tenant, message string, referrals []models.Referral) (string, error) {
	f.called = true
	return f.reply, f.err
}

// fakeSender records sends and optionally fails them.
type fakeSender struct {
	sent []string // "to:text"
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+":"+text)
	return nil
}

// fakePublisher records published lead events.
type fakePublisher struct {
	events []models.Lead
	err    error
}

func (f *fakePublisher) PublishLeadEvent(ctx context.Context, lead models.Lead, referrerPhone string) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, lead)
	return nil
}

func activeTenant(phone string) *models.Tenant {
	return &models.Tenant{Phone: phone, Name: "Jordan", Status: models.TenantStatusActive}
}

// TestProcessMessage_UnknownSender verifies that a message from an
// unrecognised number gets the generic reply and performs no writes.
func TestProcessMessage_UnknownSender(t *testing.T) {
	store := newFakeStore()
	ext := &fakeExtractor{}
	resp := &fakeResponder{reply: "hi"}
	sender := &fakeSender{}

	h := NewHandler(store, ext, resp, sender, nil)
	reply := h.ProcessMessage(context.Background(), "+19998887777", "my friend is looking")

	if reply != GenericReply {
		t.Errorf("reply = %q, want %q", reply, GenericReply)
	}
	if store.mutated() {
		t.Error("unknown sender must not cause any persistence writes")
	}
	if ext.called || resp.called {
		t.Error("collaborators must not be invoked for unknown senders")
	}
	if len(sender.sent) != 0 {
		t.Error("no SMS should be sent to unknown senders")
	}
}

// TestProcessMessage_LookupFailure verifies that a persistence failure on
// tenant lookup degrades to the generic reply instead of propagating.
func TestProcessMessage_LookupFailure(t *testing.T) {
	store := newFakeStore(activeTenant("+15550001111"))
	store.lookupErr = errors.New("connection refused")

	h := NewHandler(store, &fakeExtractor{}, &fakeResponder{reply: "hi"}, &fakeSender{}, nil)
	reply := h.ProcessMessage(context.Background(), "+15550001111", "hello")

	if reply != GenericReply {
		t.Errorf("reply = %q, want %q", reply, GenericReply)
	}
}

// TestProcessMessage_Decline verifies the decline path: the tenant is
// marked declined, no extraction or reply generation happens, and the
// exchange is not appended to the conversation log.
func TestProcessMessage_Decline(t *testing.T) {
	tenant := activeTenant("+15550001111")
	store := newFakeStore(tenant)
	ext := &fakeExtractor{}
	resp := &fakeResponder{reply: "hi"}
	sender := &fakeSender{}

	h := NewHandler(store, ext, resp, sender, nil)
	reply := h.ProcessMessage(context.Background(), "+15550001111", "nobody comes to mind")

	if reply != DeclineAck {
		t.Errorf("reply = %q, want %q", reply, DeclineAck)
	}
	if tenant.Status != models.TenantStatusDeclined {
		t.Errorf("tenant status = %q, want %q", tenant.Status, models.TenantStatusDeclined)
	}
	if ext.called {
		t.Error("extraction must not run on a decline")
	}
	if resp.called {
		t.Error("reply generation must not run on a decline")
	}
	if len(store.appended) != 0 {
		t.Errorf("decline must not append to the conversation log, got %v", store.appended)
	}
}

// TestProcessMessage_ReferralExtracted verifies the happy path: the
// candidate becomes a lead with a normalized phone, the referrer's count
// increments once, the reply is sent, and both sides are logged.
func TestProcessMessage_ReferralExtracted(t *testing.T) {
	store := newFakeStore(activeTenant("+15550001111"))
	ext := &fakeExtractor{refs: []models.Referral{
		{Name: "Sarah", Phone: "5551234", Notes: "friend"},
	}}
	resp := &fakeResponder{reply: "Perfect! Thanks for referring Sarah."}
	sender := &fakeSender{}
	pub := &fakePublisher{}

	h := NewHandler(store, ext, resp, sender, pub)
	reply := h.ProcessMessage(context.Background(), "+15550001111", "my friend Sarah, 555-1234")

	if reply != resp.reply {
		t.Errorf("reply = %q, want %q", reply, resp.reply)
	}

	lead := store.leads["+15551234"]
	if lead == nil {
		t.Fatalf("lead not created under normalized phone, leads = %v", store.leads)
	}
	if lead.ReferralSource != "Referred by +15550001111" {
		t.Errorf("referral_source = %q", lead.ReferralSource)
	}
	if got := store.referralCounts["+15550001111"]; got != 1 {
		t.Errorf("referrer count = %d, want 1", got)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	if pub.events[0].Phone != "+15551234" {
		t.Errorf("published lead phone = %q", pub.events[0].Phone)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sends = %d, want 1", len(sender.sent))
	}
	if len(store.appended) != 2 {
		t.Fatalf("log appends = %d, want 2 (inbound + reply)", len(store.appended))
	}
	if store.appended[0] != "tenant:my friend Sarah, 555-1234" {
		t.Errorf("first log entry = %q", store.appended[0])
	}
	if store.appended[1] != "assistant:"+resp.reply {
		t.Errorf("second log entry = %q", store.appended[1])
	}
}

// TestProcessMessage_RepeatReferral verifies that re-referring an existing
// lead neither overwrites its referral source nor increments the
// referrer's count, and publishes no new lead event.
func TestProcessMessage_RepeatReferral(t *testing.T) {
	store := newFakeStore(activeTenant("+15550001111"))
	store.leads["+15551234"] = &models.Lead{
		Phone:          "+15551234",
		Name:           "Sarah",
		ReferralSource: "Referred by +15552223333",
	}
	ext := &fakeExtractor{refs: []models.Referral{
		{Name: "Sarah", Phone: "+15551234"},
	}}
	pub := &fakePublisher{}

	h := NewHandler(store, ext, &fakeResponder{reply: "thanks!"}, &fakeSender{}, pub)
	h.ProcessMessage(context.Background(), "+15550001111", "Sarah might be looking")

	if got := store.leads["+15551234"].ReferralSource; got != "Referred by +15552223333" {
		t.Errorf("referral_source overwritten: %q", got)
	}
	if got := store.referralCounts["+15550001111"]; got != 0 {
		t.Errorf("referrer count = %d, want 0", got)
	}
	if len(pub.events) != 0 {
		t.Errorf("published events = %d, want 0", len(pub.events))
	}
}

// TestProcessMessage_UnidentifiedCandidatesDropped verifies that
// candidates with no identifying field are filtered out.
func TestProcessMessage_UnidentifiedCandidatesDropped(t *testing.T) {
	store := newFakeStore(activeTenant("+15550001111"))
	ext := &fakeExtractor{refs: []models.Referral{
		{Notes: "someone from the gym"},
	}}

	h := NewHandler(store, ext, &fakeResponder{reply: "ok"}, &fakeSender{}, nil)
	h.ProcessMessage(context.Background(), "+15550001111", "I might know someone")

	if len(store.leads) != 0 {
		t.Errorf("leads = %v, want none", store.leads)
	}
}

// TestProcessMessage_ExtractionFailure verifies that an extraction error
// does not abort the turn: the reply is still generated and non-empty.
func TestProcessMessage_ExtractionFailure(t *testing.T) {
	store := newFakeStore(activeTenant("+15550001111"))
	ext := &fakeExtractor{err: errors.New("rate limited")}
	resp := &fakeResponder{reply: "anyone you know looking?"}

	h := NewHandler(store, ext, resp, &fakeSender{}, nil)
	reply := h.ProcessMessage(context.Background(), "+15550001111", "hmm let me think")

	if reply == "" {
		t.Fatal("reply must be non-empty even when extraction fails")
	}
	if reply != resp.reply {
		t.Errorf("reply = %q, want %q", reply, resp.reply)
	}
}

// TestProcessMessage_ResponderFailure verifies that a reply-generation
// failure degrades to the fixed fallback, which is still sent and logged.
func TestProcessMessage_ResponderFailure(t *testing.T) {
	store := newFakeStore(activeTenant("+15550001111"))
	resp := &fakeResponder{err: errors.New("model unavailable")}
	sender := &fakeSender{}

	h := NewHandler(store, &fakeExtractor{}, resp, sender, nil)
	reply := h.ProcessMessage(context.Background(), "+15550001111", "hi there")

	if reply != fallbackReply {
		t.Errorf("reply = %q, want %q", reply, fallbackReply)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sends = %d, want 1", len(sender.sent))
	}
	if store.appended[1] != "assistant:"+fallbackReply {
		t.Errorf("fallback not logged: %q", store.appended[1])
	}
}

// TestProcessMessage_SendFailure verifies that a delivery failure does not
// prevent the turn from completing and logging.
func TestProcessMessage_SendFailure(t *testing.T) {
	store := newFakeStore(activeTenant("+15550001111"))
	sender := &fakeSender{err: errors.New("carrier rejected")}
	resp := &fakeResponder{reply: "got it!"}

	h := NewHandler(store, &fakeExtractor{}, resp, sender, nil)
	reply := h.ProcessMessage(context.Background(), "+15550001111", "hello!")

	if reply != resp.reply {
		t.Errorf("reply = %q, want %q", reply, resp.reply)
	}
	if len(store.appended) != 2 {
		t.Errorf("log appends = %d, want 2", len(store.appended))
	}
}

// TestProcessMessage_LeadPersistFailureIsolated verifies that a lead
// insert failure is swallowed and the turn still completes.
func TestProcessMessage_LeadPersistFailureIsolated(t *testing.T) {
	store := newFakeStore(activeTenant("+15550001111"))
	store.leadErr = errors.New("constraint violation")
	ext := &fakeExtractor{refs: []models.Referral{{Name: "Sam", Phone: "5559876"}}}
	resp := &fakeResponder{reply: "thanks!"}

	h := NewHandler(store, ext, resp, &fakeSender{}, nil)
	reply := h.ProcessMessage(context.Background(), "+15550001111", "Sam is looking, 555-9876")

	if reply != resp.reply {
		t.Errorf("reply = %q, want %q", reply, resp.reply)
	}
}
