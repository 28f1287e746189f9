// Package live implements the fan-out hub that pushes newly ingested
// idea events to connected viewers in real time.
//
// The hub owns its subscriber registry: Subscribe returns a handle, and
// the consumer guarantees removal by deferring Unsubscribe for the
// lifetime of its connection, so abnormal disconnects cannot leak
// channels. Messages are a typed variant (new idea or keep-alive)
// rather than string-dispatched frames.
package live
