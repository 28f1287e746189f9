// Package openai provides an ai.Embedder implementation backed by any
// OpenAI-compatible embeddings API (Ollama, LocalAI, vLLM, OpenAI).
//
// Construction failure (unreachable host, bad configuration) is intended
// to be fatal at startup; per-request embedding failures are returned to
// the caller and are recoverable.
package openai
