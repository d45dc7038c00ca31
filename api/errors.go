package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/password"
	"github.com/kbukum/clinic/database/query"
	apperrors "github.com/kbukum/clinic/errors"
	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/server"
	"github.com/kbukum/clinic/validation"
)

// fail answers err. Auth and repository errors are translated first;
// resource names the record kind for 404 bodies.
func fail(c *gin.Context, err error, resource string) {
	server.RespondError(c, publicError(err, resource))
}

func publicError(err error, resource string) *apperrors.AppError {
	switch {
	case errors.Is(err, records.ErrEmailTaken):
		return apperrors.Conflict("Email already registered.")
	case errors.Is(err, records.ErrNotFound):
		return apperrors.NotFound(resource, "")
	case errors.Is(err, password.ErrEmptyPassword):
		return apperrors.MissingField("password")
	case errors.Is(err, password.ErrPasswordTooLong):
		return apperrors.InvalidInput("password", "password is too long")
	}
	return auth.Public(err)
}

// failResource answers an ownership-checked lookup: not owned and not
// found give the same 404.
func failResource(c *gin.Context, err error, resource string) {
	server.RespondError(c, auth.PublicResource(err, resource))
}

// bindJSON decodes and validates the body into dst.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err)
	}
	return validation.Validate(dst)
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int64, error) {
	return validation.ParseID("id", c.Param("id"))
}

// listParams reads paging, sorting and filters from the query string.
func listParams(c *gin.Context, cfg query.Config) query.Params {
	return query.Parse(c.Request.URL.Query(), cfg)
}
