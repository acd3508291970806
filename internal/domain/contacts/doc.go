// Package contacts holds the contact aggregate (a contact plus its addresses) and the
// storage-independent algorithms that operate on it: reconciling a desired address list
// against the stored one, and assembling an aggregate from flat joined rows.
//
// Persistence lives in internal/data/aggregates, which implements the session
// contracts declared in contracts.go.
package contacts
