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

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cornerstone/referral/internal/models"
)

const extractSystemPrompt = `You are extracting referral information from tenant messages.

Look for:
- Names of potential referrals
- Phone numbers
- Email addresses

Extract referral information from this message: %q

IMPORTANT: Return ONLY a valid JSON array. No other text.

Format: [{"name": "Name", "phone": "+1234567890", "email": "email@example.com", "notes": "context"}]

If no referrals found, return: []

Examples:
Message: "My friend Sarah is looking for a place. Her number is 555-1234"
Response: [{"name": "Sarah", "phone": "+15551234", "email": "", "notes": "friend of tenant"}]

Message: "Nobody I can think of"
Response: []
`

// ExtractReferrals asks the model to pull referral candidates out of a
// tenant's message. A candidate survives only if it carries at least one
// identifying field; surviving phone numbers are normalized. Content the
// model wraps around the JSON array is tolerated; content with no parseable
// array yields an empty result, not an error.
func (c *Client) ExtractReferrals(ctx context.Context, message string) ([]models.Referral, error) {
	system := fmt.Sprintf(extractSystemPrompt, message)
	user := fmt.Sprintf("Extract referral info from: %s", message)

	content, err := c.complete(ctx, system, user, 300, 0.1)
	if err != nil {
		return nil, err
	}

	candidates, ok := parseReferralArray(content)
	if !ok {
		slog.Warn("extraction response had no parseable JSON array", "content", content)
		return []models.Referral{}, nil
	}

	cleaned := make([]models.Referral, 0, len(candidates))
	for _, ref := range candidates {
		if !ref.Identified() {
			continue
		}
		ref.Phone = models.NormalizePhone(ref.Phone)
		cleaned = append(cleaned, ref)
	}
	return cleaned, nil
}

// parseReferralArray parses the model's output as a JSON array of
// candidates. If the whole content is not valid JSON, the substring from
// the first '[' to the last ']' is tried before giving up.
func parseReferralArray(content string) ([]models.Referral, bool) {
	content = strings.TrimSpace(content)

	var refs []models.Referral
	if err := json.Unmarshal([]byte(content), &refs); err == nil {
		return refs, true
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &refs); err != nil {
		return nil, false
	}
	return refs, true
}
