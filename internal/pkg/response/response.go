package response

import (
	"math/rand/v2"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
)

var notFoundMessages = []string{
	"Nothing lives here (╥﹏╥)",
	"The fox dug here and found nothing",
	"404: this trail went cold",
	"That page wandered off somewhere ( ´･ω･`)",
	"Empty burrow, try another path",
}

// OK sends a 200 response. Arrays/slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			c.JSON(http.StatusOK, gin.H{"data": data})
			return
		}
	}
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error aborts with the {ok, code, message} envelope.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": 0, "code": status, "message": message})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Sign in first ((/- -)/")
}

// UnauthorizedMsg sends a 401 error response with a custom message.
func UnauthorizedMsg(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	msg := "Not Found"
	if len(notFoundMessages) > 0 {
		msg = notFoundMessages[rand.IntN(len(notFoundMessages))]
	}
	Error(c, http.StatusNotFound, msg)
}

// NotFoundMsg sends a 404 error with a custom message.
func NotFoundMsg(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context) {
	c.Header("Retry-After", "1")
	Error(c, http.StatusTooManyRequests, "Whoa, slow down a little ∑(っ °Д °;)っ")
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, err error) {
	Error(c, http.StatusInternalServerError, err.Error())
}

// BadGateway sends a 502 error response for upstream failures.
func BadGateway(c *gin.Context, err error) {
	Error(c, http.StatusBadGateway, err.Error())
}

// UnprocessableEntity sends a 422 error response.
func UnprocessableEntity(c *gin.Context, message string) {
	Error(c, http.StatusUnprocessableEntity, message)
}
