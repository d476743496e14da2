package httptransport

import (
	"errors"

	dErrors "credwallet/pkg/domain-errors"
	"credwallet/pkg/platform/sentinel"
)

// toDomain translates infrastructure facts into domain errors for the
// response envelope. Domain errors pass through unchanged.
func toDomain(err error) error {
	var domainErr *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, err.Error())
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, err.Error())
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, err.Error())
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "agent unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "internal error")
	}
}
