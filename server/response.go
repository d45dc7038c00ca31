package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/clinic/errors"
)

// DataResponse is the success envelope for record payloads.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondError writes err as the standard error body. AppErrors keep their
// status; anything else becomes a generic 500. The cause is attached to the
// gin context for the request log and never sent to the client.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if appErr.Cause != nil {
		_ = c.Error(appErr.Cause)
	} else if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondPage sends a 200 with a paged result as is; the result carries
// its own data and pagination fields.
func RespondPage(c *gin.Context, page any) {
	c.JSON(http.StatusOK, page)
}

// RespondCreated sends a 201 wrapping data.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
