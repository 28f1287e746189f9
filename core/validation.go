// Copyright 2026 Resonet Labs
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


package core

import "fmt"

// ValidateIdeaEvent validates an inbound idea event according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Author must not be empty
//   - Content must not be empty
//
// NOT validated:
//   - CreatedAt (author-supplied and untrusted; no monotonicity check)
//   - Tags (references may point at ideas that were never ingested)
func ValidateIdeaEvent(event *IdeaEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidIdeaEvent)
	}

	if event.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIdeaEvent, ErrEmptyId)
	}

	if event.Author == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIdeaEvent, ErrEmptyAuthor)
	}

	if event.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIdeaEvent, ErrEmptyContent)
	}

	return nil
}
