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

const tenantColumns = `phone, name, email, status, last_contacted,
	referrals_provided, conversation_history, created_at, updated_at`

// GetTenantByPhone retrieves a tenant by phone number.
// Returns (nil, nil) when no tenant exists for the number.
func (s *Store) GetTenantByPhone(ctx context.Context, phone string) (*models.Tenant, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE phone = $1
	`, phone)
	return scanTenant(row)
}

// CreateTenant inserts a new tenant record with status "active".
func (s *Store) CreateTenant(ctx context.Context, t models.Tenant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tenants (phone, name, email, status)
		VALUES ($1, $2, $3, 'active')
	`, t.Phone, t.Name, t.Email)
	return err
}

// BulkCreateTenants inserts a batch of tenant records, skipping phones
// that already exist. Used when seeding a property's roster.
func (s *Store) BulkCreateTenants(ctx context.Context, tenants []models.Tenant) (int, error) {
	inserted := 0
	for _, t := range tenants {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO tenants (phone, name, email, status)
			VALUES ($1, $2, $3, 'active')
			ON CONFLICT (phone) DO NOTHING
		`, t.Phone, t.Name, t.Email)
		if err != nil {
			return inserted, fmt.Errorf("insert tenant %s: %w", t.Phone, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// UpdateTenantStatus sets the tenant's status (active, contacted, declined,
// completed) and bumps last_contacted.
func (s *Store) UpdateTenantStatus(ctx context.Context, phone, status string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE tenants
		SET status = $1, last_contacted = NOW(), updated_at = NOW()
		WHERE phone = $2
	`, status, phone)
	return err
}

// AppendTenantMessage appends one side of an exchange to the tenant's
// conversation log with a timestamp, and bumps last_contacted. Role is
// "tenant" for inbound messages; anything else is logged as the assistant.
func (s *Store) AppendTenantMessage(ctx context.Context, phone, message, role string) error {
	label := "AI"
	if role == "tenant" {
		label = "Tenant"
	}
	entry := fmt.Sprintf("%s - %s: %s\n", time.Now().Format("2006-01-02 15:04"), label, message)

	_, err := s.pool.Exec(ctx, `
		UPDATE tenants
		SET conversation_history = conversation_history || $1,
		    last_contacted = NOW(),
		    updated_at = NOW()
		WHERE phone = $2
	`, entry, phone)
	return err
}

// ListBlastEligible returns active tenants whose last_contacted is null or
// older than the given window. These are the recipients of the next
// referral blast.
func (s *Store) ListBlastEligible(ctx context.Context, window time.Duration) ([]models.Tenant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE status = 'active'
		  AND (last_contacted IS NULL OR last_contacted < NOW() - $1::interval)
		ORDER BY phone
	`, fmt.Sprintf("%d seconds", int(window.Seconds())))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTenants(rows)
}

// ListActiveTenantPhones returns the phone numbers of every active tenant,
// regardless of when they were last contacted. Used for one-off
// announcements that bypass the blast eligibility window.
func (s *Store) ListActiveTenantPhones(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT phone
		FROM tenants
		WHERE status = 'active'
		ORDER BY phone
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}

// IncrementReferrals adds one to the tenant's referral count and bumps
// last_contacted. Called only when a referral produces a genuinely new lead.
func (s *Store) IncrementReferrals(ctx context.Context, phone string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE tenants
		SET referrals_provided = referrals_provided + 1,
		    last_contacted = NOW(),
		    updated_at = NOW()
		WHERE phone = $1
	`, phone)
	return err
}

// scanTenant scans a single row into a Tenant.
func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(
		&t.Phone, &t.Name, &t.Email, &t.Status, &t.LastContacted,
		&t.ReferralsProvided, &t.ConversationHistory, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// collectTenants scans multiple rows into a slice of Tenants.
func collectTenants(rows pgx.Rows) ([]models.Tenant, error) {
	var tenants []models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(
			&t.Phone, &t.Name, &t.Email, &t.Status, &t.LastContacted,
			&t.ReferralsProvided, &t.ConversationHistory, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
