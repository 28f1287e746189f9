// Package ai defines the embedding service abstraction for ideastream.
//
// The Embedder interface decouples the rest of the system from the
// concrete embedding provider. The openai subpackage implements it
// against any OpenAI-compatible API (Ollama, LocalAI, vLLM, OpenAI);
// the mock subpackage provides a deterministic implementation for tests.
//
// A single Embedder instance is constructed by the composition root and
// shared by reference between ingestion and search. There is no global
// model cache; ownership is explicit.
package ai
