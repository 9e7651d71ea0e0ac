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

import "strings"

// positiveSignals mark a message as NOT declining regardless of any other
// content. They are checked before the decline patterns and win absolutely:
// "no, but I know someone" is not a decline.
var positiveSignals = []string{
	"i know", "yes", "yeah", "sure", "friend", "someone",
	"looking", "interested", "might", "could", "name is",
	"number is", "phone", "contact", "email",
}

// declinePatterns are consulted only when no positive signal matched.
//
// The bare "no" entry matches as a substring of many unrelated words
// ("snow", "known"). That over-match is a known limitation of the
// heuristic, kept as-is.
var declinePatterns = []string{
	"no", "nope", "not really", "nobody", "not interested",
	"don't know anyone", "dont know anyone", "no one",
	"not right now", "not at the moment", "can't think of anyone",
}

// IsDeclining reports whether the tenant is declining to provide
// referrals. Matching is case-insensitive substring matching over the
// trimmed message.
func IsDeclining(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))

	for _, signal := range positiveSignals {
		if strings.Contains(m, signal) {
			return false
		}
	}

	for _, pattern := range declinePatterns {
		if strings.Contains(m, pattern) {
			return true
		}
	}
	return false
}
