// Package ingestion turns validated idea events into stored, searchable
// ideas. The coordinator validates each event, extracts its references,
// derives a content preview, vectorizes the content, writes the idea
// atomically and fans the event out to live subscribers. Resonance
// checks run asynchronously on a worker pool and never block or fail an
// ingest.
package ingestion
