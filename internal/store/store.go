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

// Package store provides Postgres-backed persistence for tenant and lead
// records. Both record kinds are keyed by phone number. The schema is
// bootstrapped on startup; there is no migration machinery beyond
// CREATE TABLE IF NOT EXISTS.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides CRUD operations for tenants and leads in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store backed by the given Postgres pool. It ensures the
// tenants and leads tables exist on creation.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure referral schema: %w", err)
	}
	slog.Info("referral store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tenants (
			phone                TEXT PRIMARY KEY,
			name                 TEXT DEFAULT '',
			email                TEXT DEFAULT '',
			status               TEXT DEFAULT 'active',
			last_contacted       TIMESTAMPTZ,
			referrals_provided   INT DEFAULT 0,
			conversation_history TEXT DEFAULT '',
			created_at           TIMESTAMPTZ DEFAULT NOW(),
			updated_at           TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_tenants_status ON tenants(status);
		CREATE INDEX IF NOT EXISTS idx_tenants_last_contacted ON tenants(last_contacted);

		CREATE TABLE IF NOT EXISTS leads (
			phone             TEXT PRIMARY KEY,
			name              TEXT DEFAULT '',
			email             TEXT DEFAULT '',
			beds              TEXT DEFAULT '',
			baths             TEXT DEFAULT '',
			move_in_date      TEXT DEFAULT '',
			price             TEXT DEFAULT '',
			location          TEXT DEFAULT '',
			amenities         TEXT DEFAULT '',
			tour_availability TEXT DEFAULT '',
			tour_ready        BOOLEAN DEFAULT FALSE,
			chat_history      TEXT DEFAULT '',
			referral_source   TEXT DEFAULT '',
			created_at        TIMESTAMPTZ DEFAULT NOW(),
			updated_at        TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_leads_referral_source ON leads(referral_source);
	`)
	return err
}

// Ping checks the Postgres connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
