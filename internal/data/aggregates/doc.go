// Package aggregates implements the contact aggregate's storage sessions on top
// of internal/data/session.
//
// A ContactReader runs on a read session without a transaction. A ContactWriter
// owns one transaction: writes are queued on the session batch and reach storage
// only when Persist commits them. Every error leaving this package is mapped to
// an aggregate error code (see MapError).
package aggregates
