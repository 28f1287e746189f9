// Package api exposes the retrieval and ingestion surface over HTTP.
// All endpoints speak JSON; the stream endpoint speaks server-sent
// events. The handlers are thin: they parse parameters, call into
// search and ingestion, and map the error taxonomy onto status codes.
package api
