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
	"fmt"
	"strings"

	"github.com/cornerstone/referral/internal/models"
)

const acknowledgedReplyPrompt = `You are a friendly AI assistant collecting referrals from current tenants.

The tenant just provided referral information. Generate a response that:
1. Thanks them for the referral(s)
2. Asks if they know anyone else who might be looking
3. Keeps it brief and friendly
4. Uses emojis appropriately

Start with: %q

The tenant just said: %q
`

const encouragingReplyPrompt = `You are a friendly AI assistant collecting referrals from current tenants for off-campus housing.

Generate a conversational response that:
- Acknowledges their message
- Encourages them to share referral information if they haven't already
- Asks for name and phone number of potential referrals
- Keeps it casual and friendly
- Uses emojis appropriately
- If they seem hesitant, reassure them it's just to help their friends find housing

The tenant just said: %q
`

// GenerateReply produces a short conversational reply for the tenant.
// When candidates were extracted, the reply opens by acknowledging them
// by name and asks for more; otherwise it encourages the tenant to share
// referral details.
func (c *Client) GenerateReply(ctx context.Context, tenant *models.Tenant, message string, referrals []models.Referral) (string, error) {
	var system string
	if len(referrals) > 0 {
		system = fmt.Sprintf(acknowledgedReplyPrompt, acknowledgment(referrals), message)
	} else {
		system = fmt.Sprintf(encouragingReplyPrompt, message)
	}

	content, err := c.complete(ctx, system, "Generate a friendly referral response.", 150, 0.7)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(content)
	if reply == "" {
		return "", fmt.Errorf("reply generation returned empty content")
	}
	return reply, nil
}

// acknowledgment builds the opening line naming the extracted candidates,
// with singular phrasing for one and a comma-joined list for several.
func acknowledgment(referrals []models.Referral) string {
	names := make([]string, 0, len(referrals))
	for _, ref := range referrals {
		name := ref.Name
		if name == "" {
			name = "someone"
		}
		names = append(names, name)
	}

	if len(names) == 1 {
		return fmt.Sprintf("Perfect! Thanks for referring %s.", names[0])
	}
	return fmt.Sprintf("Awesome! Thanks for referring %s.", strings.Join(names, ", "))
}
