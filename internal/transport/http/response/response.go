package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest         = "bad_request"
	CodeValidation         = "validation_failed"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidCredentials = "invalid_credentials"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeEmailExists        = "email_exists"
	CodeDailyLimitExceeded = "daily_limit_exceeded"
	CodeUpstreamFailure    = "upstream_failure"
	CodeInternalServer     = "internal_error"
)

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, data)
}

func Error(c *gin.Context, httpStatus int, code, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{
		Code:    code,
		Message: message,
	})
}

func ValidationError(c *gin.Context, message string, details map[string]string) {
	c.AbortWithStatusJSON(400, ErrorBody{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	})
}
