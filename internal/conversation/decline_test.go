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

import "testing"

// TestIsDeclining_PositiveSignalsWin verifies that any positive signal
// marks the message as not declining, even when decline terms are present.
func TestIsDeclining_PositiveSignalsWin(t *testing.T) {
	messages := []string{
		"no, but I know someone",
		"Nope, actually my friend might be interested",
		"not right now but her number is 555-1234",
		"Yes!",
		"yeah I could ask around",
		"my friend Sarah is looking for a place",
		"their email is sam@example.com",
		// "interested" is a positive signal even under negation; such a
		// tenant gets the encouraging reply rather than the decline path.
		"NOT INTERESTED",
		"I'm not interested, sorry",
	}

	for _, msg := range messages {
		if IsDeclining(msg) {
			t.Errorf("IsDeclining(%q) = true, want false", msg)
		}
	}
}

// TestIsDeclining_DeclineTerms verifies decline detection when no
// positive signal is present.
func TestIsDeclining_DeclineTerms(t *testing.T) {
	messages := []string{
		"no",
		"No.",
		"nope",
		"nobody",
		"not really",
		"don't know anyone",
		"dont know anyone sorry",
		"no one comes to mind",
		"not right now",
		"not at the moment",
		"can't think of anyone",
	}

	for _, msg := range messages {
		if !IsDeclining(msg) {
			t.Errorf("IsDeclining(%q) = false, want true", msg)
		}
	}
}

// TestIsDeclining_NeutralMessages verifies that messages matching neither
// vocabulary are not declines.
func TestIsDeclining_NeutralMessages(t *testing.T) {
	messages := []string{
		"",
		"hi",
		"what is this about?",
		"let me get back to you",
	}

	for _, msg := range messages {
		if IsDeclining(msg) {
			t.Errorf("IsDeclining(%q) = true, want false", msg)
		}
	}
}

// TestIsDeclining_SubstringOvermatch documents the accepted limitation of
// the bare "no" pattern: it matches inside unrelated words.
func TestIsDeclining_SubstringOvermatch(t *testing.T) {
	if !IsDeclining("snow") {
		t.Error(`IsDeclining("snow") = false; the bare "no" substring is expected to match`)
	}
}
