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

import "strings"

// NormalizePhone canonicalises a phone number before storage:
// every character other than digits and '+' is removed; if the result is
// non-empty and has no leading '+', a single leading '1' is stripped and
// '+1' is prepended. The function is idempotent — an already normalized
// '+1XXXXXXXXXX' string passes through unchanged.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}

	phone := b.String()
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}

	phone = strings.TrimPrefix(phone, "1")
	return "+1" + phone
}
