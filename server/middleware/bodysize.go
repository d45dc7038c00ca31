package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kbukum/clinic/errors"
	"github.com/kbukum/clinic/util"
)

const defaultMaxBodySize = 1 << 20 // 1MB

// BodySizeLimit caps the request body at maxSize ("1MB", "512KB").
// A declared length over the cap is refused with 413 up front; an
// undeclared one fails on read, which the binders report as bad input.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				appErr := apperrors.New(apperrors.ErrCodeInvalidInput, "Request body too large.", http.StatusRequestEntityTooLarge)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(appErr.HTTPStatus)
				_ = json.NewEncoder(w).Encode(appErr.ToResponse())
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
