package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/pkg/apperror"
)

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// ErrorBody is the "error" member of a failed response.
type ErrorBody struct {
	Code    apperror.Kind     `json:"code"`
	Details map[string]string `json:"details,omitempty"`
	Cause   string            `json:"cause,omitempty"`
}

func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
}

func Error[T any](ctx *gin.Context, status int, message string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
}

// JSON writes a success envelope.
func JSON[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) {
	res := Success(ctx, status, data, message, meta)
	ctx.JSON(res.Status, res)
}

// Fail classifies err and writes the matching error envelope.
// The cause of an internal error is only included when verbose is set.
func Fail(ctx *gin.Context, err error, verbose bool) {
	ae := apperror.From(err)
	status := ae.Kind.HTTPStatus()

	body := ErrorBody{Code: ae.Kind, Details: ae.Details}
	if verbose && ae.Kind == apperror.KindInternal && ae.Cause != nil {
		body.Cause = ae.Cause.Error()
	}

	res := Error[any](ctx, status, ae.Message, body)
	ctx.AbortWithStatusJSON(status, res)
}
