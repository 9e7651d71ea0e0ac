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

	"github.com/cornerstone/referral/internal/models"
)

// Stats summarises the referral program.
type Stats struct {
	TotalTenants     int             `json:"total_tenants"`
	ContactedTenants int             `json:"contacted_tenants"`
	TotalReferrals   int             `json:"total_referrals"`
	TopReferrers     []models.Tenant `json:"top_referrers"`
}

// ReferralStats returns program-wide counts and the top five referring tenants.
func (s *Store) ReferralStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tenants),
			(SELECT COUNT(*) FROM tenants WHERE last_contacted IS NOT NULL),
			(SELECT COUNT(*) FROM leads WHERE referral_source <> '')
	`).Scan(&stats.TotalTenants, &stats.ContactedTenants, &stats.TotalReferrals)
	if err != nil {
		return nil, fmt.Errorf("referral counts: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE referrals_provided > 0
		ORDER BY referrals_provided DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("top referrers: %w", err)
	}
	defer rows.Close()

	stats.TopReferrers, err = collectTenants(rows)
	if err != nil {
		return nil, fmt.Errorf("top referrers: %w", err)
	}
	return &stats, nil
}
