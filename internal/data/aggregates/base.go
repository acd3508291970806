package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/contacts-backend/internal/data/session"
	domainagg "github.com/yungbote/contacts-backend/internal/domain/aggregates"
)

type BaseDeps struct {
	Sessions *session.Factory
	Hooks    Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	return d
}

// observe maps err for op, reports the outcome to hooks and returns the mapped error.
func observe(hooks Hooks, op string, start time.Time, err error) error {
	mapped := MapError(op, err)
	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			hooks.IncRetry(op)
		}
	}
	hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
