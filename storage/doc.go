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


// Package storage provides the storage abstraction layer for ideastream.
//
// This package defines the repository interface that decouples storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// Public constructors return the storage.IdeaRepository interface to
// enforce abstraction:
//
//	repo, err := badger.NewIdeaRepository(backend)  // returns storage.IdeaRepository
//
// # Failure semantics
//
// Backend failures other than a missing key are wrapped in
// ErrStoreUnavailable. Callers surface these as recoverable errors to
// their own callers and never crash the process; retrying a failed
// ingest is the upstream deliverer's responsibility.
//
// # Thread safety
//
// All repository implementations must be thread-safe. Reads may run
// concurrently with upserts; a reader may or may not observe an
// in-flight write (read-committed, no snapshot isolation guarantee).
//
// # Context support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
