package http

import (
	"errors"
	"net/http"

	"salesreport/internal/core"
	applog "salesreport/internal/log"
	"salesreport/internal/middleware/trace"
)

// writeError maps an error class to a status code. System errors are logged
// and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentHTTP)

	switch {
	case errors.Is(err, core.ErrInvalidToken):
		logger.WarnContext(ctx, "Rejected token", applog.FieldOperation, op, applog.FieldError, err.Error())
		UnauthorizedError("invalid or expired token").Write(w)
	case core.IsUserInput(err):
		logger.InfoContext(ctx, "Request rejected", applog.FieldOperation, op,
			applog.FieldErrorType, applog.ErrorTypeValidation, applog.FieldError, err.Error())
		BadRequestError(err.Error()).Write(w)
	case core.IsDataIntegrity(err):
		logger.ErrorContext(ctx, "Stored records violate report invariants", applog.FieldOperation, op,
			applog.FieldErrorType, applog.ErrorTypeIntegrity, applog.FieldError, err.Error())
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Request failed", err,
			applog.ComponentHTTP, op, applog.NewFields().WithErrorType(applog.ErrorTypeInternal))
		InternalServerError("internal server error", trace.GetRequestID(ctx)).Write(w)
	}
}
