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

import "errors"

// Domain validation errors
var (
	// ErrInvalidIdeaEvent indicates an inbound idea event failed validation.
	ErrInvalidIdeaEvent = errors.New("invalid idea event")

	// ErrEmptyId indicates the event Id field is empty.
	ErrEmptyId = errors.New("id cannot be empty")

	// ErrEmptyAuthor indicates the event Author field is empty.
	ErrEmptyAuthor = errors.New("author cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
