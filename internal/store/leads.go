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

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cornerstone/referral/internal/models"
)

const leadColumns = `phone, name, email, beds, baths, move_in_date, price,
	location, amenities, tour_availability, tour_ready, chat_history,
	referral_source, created_at, updated_at`

// GetLeadByPhone retrieves a lead by phone number.
// Returns (nil, nil) when no lead exists for the number.
func (s *Store) GetLeadByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE phone = $1
	`, phone)
	return scanLead(row)
}

// CreateReferralLead records a referral candidate as a lead.
//
// If no lead exists for the candidate's phone, a new lead is inserted with
// the referral source naming the referring tenant, and the referrer's
// count is incremented. If a lead already exists, its data is never
// overwritten: only an empty referral_source (and an empty name) is
// back-filled, and the referrer's count is NOT incremented.
//
// Returns true only when a genuinely new lead was created.
func (s *Store) CreateReferralLead(ctx context.Context, ref models.Referral, referrerPhone string) (bool, error) {
	source := fmt.Sprintf("Referred by %s", referrerPhone)
	initialChat := fmt.Sprintf("Referral from %s\n", referrerPhone)

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO leads (phone, name, email, chat_history, referral_source)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO NOTHING
	`, ref.Phone, ref.Name, ref.Email, initialChat, source)
	if err != nil {
		return false, fmt.Errorf("insert lead: %w", err)
	}

	if tag.RowsAffected() > 0 {
		if err := s.IncrementReferrals(ctx, referrerPhone); err != nil {
			return true, fmt.Errorf("increment referrals for %s: %w", referrerPhone, err)
		}
		return true, nil
	}

	// Lead already exists — back-fill the referral source and name only
	// when the source is still unset.
	_, err = s.pool.Exec(ctx, `
		UPDATE leads
		SET referral_source = $1,
		    name = CASE WHEN name = '' THEN $2 ELSE name END,
		    updated_at = NOW()
		WHERE phone = $3 AND referral_source = ''
	`, source, ref.Name, ref.Phone)
	if err != nil {
		return false, fmt.Errorf("backfill lead referral source: %w", err)
	}
	return false, nil
}

// CreateLead inserts a bare lead record for the direct intake path,
// optionally seeding its chat history with the first inbound message.
func (s *Store) CreateLead(ctx context.Context, phone, initialMessage string) error {
	initialChat := ""
	if initialMessage != "" {
		initialChat = fmt.Sprintf("%s - Lead: %s\n", time.Now().Format("2006-01-02 15:04"), initialMessage)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (phone, chat_history)
		VALUES ($1, $2)
	`, phone, initialChat)
	return err
}

// scanLead scans a single row into a Lead.
func scanLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(
		&l.Phone, &l.Name, &l.Email, &l.Beds, &l.Baths, &l.MoveInDate,
		&l.Price, &l.Location, &l.Amenities, &l.TourAvailability,
		&l.TourReady, &l.ChatHistory, &l.ReferralSource, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
