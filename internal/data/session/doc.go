// Package session implements the per-request unit of work over PostgreSQL.
//
// A Session owns one pooled connection and at most one transaction, both acquired
// on first use. Reads go through Command; writes are queued on a Batch and sent in
// a single round trip when the session is persisted. Release returns everything to
// the pool and rolls back whatever was not committed.
//
// Sessions are not safe for concurrent use; one request owns one session.
package session
