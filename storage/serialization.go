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


package storage

import (
	"fmt"

	"github.com/resonet/ideastream/core"
)

// MarshalIdea serializes an Idea to bytes.
func MarshalIdea(idea *core.Idea) []byte {
	buf := make([]byte, core.IdeaMUS.Size(*idea))
	core.IdeaMUS.Marshal(*idea, buf)
	return buf
}

// UnmarshalIdea deserializes an Idea from bytes.
func UnmarshalIdea(data []byte) (*core.Idea, error) {
	idea, _, err := core.IdeaMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &idea, nil
}
