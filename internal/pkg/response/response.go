// Package response implements the uniform API envelope:
// {code, message, data, success, timestamp}. Business failures are returned
// with HTTP 200 and success=false; raw HTTP statuses are reserved for
// unmatched routes and panics.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope codes. 50xxx covers auth, 60xxx covers file and share errors.
const (
	CodeSuccess = 200
	CodeError   = 500

	CodeTokenExpired   = 50014
	CodeTokenInvalid   = 50008
	CodeBadCredentials = 50001
	CodeUserNotFound   = 50002
	CodeUserDisabled   = 50003

	CodeStorageFull       = 60001
	CodeFileNotFound      = 60002
	CodeFileUploadError   = 60003
	CodeFileDownloadError = 60004
	CodeFileSizeLimit     = 60005
	CodeFileTypeBlocked   = 60006
	CodeFolderNotFound    = 60007
	CodeShareNotFound     = 60008
	CodeShareCodeError    = 60009
	CodeShareExpired      = 60010
	CodeShareAccessLimit  = 60011
)

func envelope(code int, message string, data any, success bool) gin.H {
	return gin.H{
		"code":      code,
		"message":   message,
		"data":      data,
		"success":   success,
		"timestamp": time.Now().UnixMilli(),
	}
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope(CodeSuccess, "ok", data, true))
}

func SuccessMsg(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope(CodeSuccess, message, data, true))
}

func Error(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope(CodeError, message, nil, false))
}

func ErrorCode(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, envelope(code, message, nil, false))
}

// ErrorData carries a payload alongside a failure, e.g. the partial result
// of an access check.
func ErrorData(c *gin.Context, code int, message string, data any) {
	c.JSON(http.StatusOK, envelope(code, message, data, false))
}

// Unauthorized is the one business failure that uses a real HTTP status, so
// clients and middleware can distinguish a missing session from a domain
// error.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, envelope(CodeTokenInvalid, message, nil, false))
}
