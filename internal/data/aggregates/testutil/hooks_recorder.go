// Package testutil holds fakes shared by tests of the contact aggregate store.
package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/contacts-backend/internal/data/aggregates"
)

// Signal is one event reported through aggregates.Hooks.
type Signal struct {
	Kind     string // "operation", "conflict" or "retry"
	Op       string // e.g. "contacts.get"
	Status   string // set for operations only
	Duration time.Duration
}

func (s Signal) String() string {
	if s.Kind == "operation" {
		return fmt.Sprintf("%s %s=%s", s.Kind, s.Op, s.Status)
	}
	return fmt.Sprintf("%s %s", s.Kind, s.Op)
}

// HooksRecorder keeps every signal in arrival order. It is safe for concurrent use.
type HooksRecorder struct {
	mu      sync.Mutex
	signals []Signal
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.record(Signal{Kind: "operation", Op: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.record(Signal{Kind: "conflict", Op: name})
}

func (h *HooksRecorder) IncRetry(name string) {
	h.record(Signal{Kind: "retry", Op: name})
}

func (h *HooksRecorder) record(s Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.signals = append(h.signals, s)
}

// Trail renders the signals as strings, handy for cmp.Diff against a want list.
func (h *HooksRecorder) Trail() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.signals))
	for i, s := range h.signals {
		out[i] = s.String()
	}
	return out
}

// Statuses returns the statuses reported for op, in order.
func (h *HooksRecorder) Statuses(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, s := range h.signals {
		if s.Kind == "operation" && s.Op == op {
			out = append(out, s.Status)
		}
	}
	return out
}
