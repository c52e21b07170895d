package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/videotube/videotube-api/internal/domain/apperr"
	"github.com/videotube/videotube-api/pkg/response"
)

// statusFor maps error kinds to HTTP status codes. AuthError from explicit
// auth operations maps to 400 here; the session resolver answers 401 itself.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindAuth, apperr.KindUpload:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the envelope for err. Untagged errors surface as opaque 500s.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := apperr.Message(err)
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	response.Error(c, status, msg, nil)
}
