package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/response"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report the json name of a field, so
// error details use the names the client sent.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindJSON decodes and validates the body. It writes the 400 itself and
// returns false when the payload is unusable.
func bindJSON(c *gin.Context, dst interface{}) bool {
	useJSONFieldNames()
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describeTag(fe)
		}
		response.ValidationError(c, "invalid request payload", details)
		return false
	}
	response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
	return false
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// writeError maps service errors onto HTTP responses. Anything unrecognised
// becomes a 500 and is logged; internalMsg is what the client sees then.
func writeError(c *gin.Context, logger *zap.Logger, err error, internalMsg string) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, "invalid request payload", verr.Fields)
	case errors.Is(err, app.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrChannelNotFound), errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusConflict, response.CodeEmailExists, err.Error())
	case errors.Is(err, app.ErrDailyLimitExceeded):
		response.Error(c, http.StatusTooManyRequests, response.CodeDailyLimitExceeded, err.Error())
	case errors.Is(err, app.ErrAIUnavailable):
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailure, app.ErrAIUnavailable.Error())
	default:
		_ = c.Error(err)
		logger.Error(internalMsg, zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, internalMsg)
	}
}
