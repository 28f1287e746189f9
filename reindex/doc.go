// Package reindex re-encodes the vectors of every stored idea, for use
// after switching embedding models or changing the normalization rules.
//
// Ideas are processed in batches with progress reporting and retry with
// exponential backoff around the embedding calls. Each idea is rewritten
// through the repository's upsert path so the secondary indices stay
// consistent.
package reindex
