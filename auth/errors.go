package auth

import (
	"errors"

	apperrors "github.com/kbukum/clinic/errors"
)

// The auth error taxonomy. Callers compare with errors.Is; the sentinels are
// never shown to clients as-is, see Public.
var (
	ErrInvalidCredentials         = errors.New("auth: invalid credentials")
	ErrInvalidOrExpiredCredential = errors.New("auth: invalid or expired credential")
	ErrWrongRole                  = errors.New("auth: wrong role")
	ErrForbidden                  = errors.New("auth: forbidden")
	ErrNotFound                   = errors.New("auth: resource not found")
)

// Public converts err into the response sent to clients. Auth failures
// become generic 401/403 answers carrying no detail about why they failed.
// Errors outside the taxonomy pass through when they are AppErrors and
// become Internal otherwise.
func Public(err error) *apperrors.AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidCredentials):
		return apperrors.Unauthorized("Invalid email or password.")
	case errors.Is(err, ErrInvalidOrExpiredCredential):
		return apperrors.Unauthorized("")
	case errors.Is(err, ErrWrongRole), errors.Is(err, ErrForbidden):
		return apperrors.Forbidden("")
	case errors.Is(err, ErrNotFound):
		return apperrors.NotFound("resource", "")
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	return apperrors.Internal(err)
}

// PublicResource is Public for resource-scoped operations: a resource the
// principal does not own answers exactly like a resource that does not
// exist.
func PublicResource(err error, resource string) *apperrors.AppError {
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
		return apperrors.NotFound(resource, "")
	}
	return Public(err)
}
