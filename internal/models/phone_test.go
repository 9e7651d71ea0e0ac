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

package models

import "testing"

// TestNormalizePhone verifies the canonicalisation rule: strip everything
// but digits and '+', then (when no leading '+') strip one leading '1' and
// prepend '+1'.
func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already normalized", in: "+15551234567", want: "+15551234567"},
		{name: "bare seven digits", in: "5551234", want: "+15551234"},
		{name: "dashed with leading one", in: "111-555-1234", want: "+1115551234"},
		{name: "formatted US number", in: "(555) 123-4567", want: "+15551234567"},
		{name: "leading one stripped once", in: "15551234567", want: "+15551234567"},
		{name: "spaces and dots", in: "555.123 4567", want: "+15551234567"},
		{name: "plus kept verbatim", in: "+44 20 7946 0958", want: "+442079460958"},
		{name: "empty", in: "", want: ""},
		{name: "no digits at all", in: "call me", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.in)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNormalizePhone_Idempotent verifies that normalizing an already
// normalized number is a no-op.
func TestNormalizePhone_Idempotent(t *testing.T) {
	inputs := []string{"5551234", "111-555-1234", "+15551234567", "(555) 123-4567"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		twice := NormalizePhone(once)
		if once != twice {
			t.Errorf("NormalizePhone not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

// TestReferralIdentified verifies the candidate filter predicate.
func TestReferralIdentified(t *testing.T) {
	tests := []struct {
		name string
		ref  Referral
		want bool
	}{
		{name: "name only", ref: Referral{Name: "Sarah"}, want: true},
		{name: "phone only", ref: Referral{Phone: "+15551234"}, want: true},
		{name: "email only", ref: Referral{Email: "sarah@example.com"}, want: true},
		{name: "notes only", ref: Referral{Notes: "a friend"}, want: false},
		{name: "empty", ref: Referral{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Identified(); got != tt.want {
				t.Errorf("Identified() = %v, want %v", got, tt.want)
			}
		})
	}
}
