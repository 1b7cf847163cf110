package utils

import "github.com/gin-gonic/gin"

// Application error codes. The first three digits mirror the HTTP status.
const (
	CodeOK                = 0
	CodeInvalidRequest    = 40000
	CodeInvalidAction     = 40001
	CodeInvalidMultiplier = 40002
	CodeAuthMissing       = 40101
	CodeAuthFormat        = 40102
	CodeAuthInvalid       = 40105
	CodeUnauthorized      = 40110
	CodeNotFound          = 40400
	CodeRateLimited       = 42901
	CodeInternal          = 50000
	CodePersistFailed     = 50301
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, CodeOK, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
