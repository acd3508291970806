// Package aggregates defines the error vocabulary shared by aggregate reads and writes.
//
// Codes are transport-agnostic; the HTTP layer maps them to status codes.
package aggregates
