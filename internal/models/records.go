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

// Package models defines the data structures shared across the referral service.
package models

import "time"

// Tenant status values. A tenant moves from active to contacted when a
// blast goes out, to declined when they opt out, and to completed when
// the referral campaign for them is finished.
const (
	TenantStatusActive    = "active"
	TenantStatusContacted = "contacted"
	TenantStatusDeclined  = "declined"
	TenantStatusCompleted = "completed"
)

// Tenant represents an existing resident who may be solicited for referrals.
// Tenants are keyed by phone number and never deleted by this service.
type Tenant struct {
	Phone               string     `json:"phone" yaml:"phone"`
	Name                string     `json:"name" yaml:"name"`
	Email               string     `json:"email" yaml:"email"`
	Status              string     `json:"status" yaml:"-"`
	LastContacted       *time.Time `json:"last_contacted,omitempty" yaml:"-"`
	ReferralsProvided   int        `json:"referrals_provided" yaml:"-"`
	ConversationHistory string     `json:"conversation_history" yaml:"-"`
	CreatedAt           time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt           time.Time  `json:"updated_at" yaml:"-"`
}

// Lead represents a prospective resident, created from a referral or
// another intake path. The housing-preference fields are free text filled
// in by a separate intake flow; this service only creates the record and
// annotates its referral source.
type Lead struct {
	Phone            string    `json:"phone"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Beds             string    `json:"beds"`
	Baths            string    `json:"baths"`
	MoveInDate       string    `json:"move_in_date"`
	Price            string    `json:"price"`
	Location         string    `json:"location"`
	Amenities        string    `json:"amenities"`
	TourAvailability string    `json:"tour_availability"`
	TourReady        bool      `json:"tour_ready"`
	ChatHistory      string    `json:"chat_history"`
	ReferralSource   string    `json:"referral_source"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Referral is a candidate extracted from a tenant's free-form message.
type Referral struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// Identified reports whether the candidate carries at least one
// identifying field. Candidates without any are discarded.
func (r Referral) Identified() bool {
	return r.Name != "" || r.Phone != "" || r.Email != ""
}
