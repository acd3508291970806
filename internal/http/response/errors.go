package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/contacts-backend/internal/domain/aggregates"
	"github.com/yungbote/contacts-backend/internal/platform/apierr"
)

// StatusClientClosedRequest is reported when the caller went away mid-request.
const StatusClientClosedRequest = 499

// StatusForCode maps an aggregate error code onto an HTTP status.
func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict, domainagg.CodeInvariantViolation:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	case domainagg.CodeCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondErr writes err with the most specific status it carries: an explicit
// apierr first, then the aggregate error code. Server-side failures are
// answered with the status text only.
func RespondErr(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr)
		return
	}
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
		if errors.Is(err, context.Canceled) {
			code = domainagg.CodeCanceled
		}
	}
	status := StatusForCode(code)
	if status >= http.StatusInternalServerError {
		RespondError(c, status, string(code), errors.New(http.StatusText(status)))
		return
	}
	RespondError(c, status, string(code), err)
}
