package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func run(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return rec
}

func TestOKWrapsSlices(t *testing.T) {
	rec := run(func(c *gin.Context) { OK(c, []string{"a"}) })
	assert.JSONEq(t, `{"data":["a"]}`, rec.Body.String())

	rec = run(func(c *gin.Context) { OK(c, gin.H{"a": 1}) })
	assert.JSONEq(t, `{"a":1}`, rec.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	rec := run(func(c *gin.Context) { BadGateway(c, errors.New("upstream down")) })
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"ok":0,"code":502,"message":"upstream down"}`, rec.Body.String())

	rec = run(TooManyRequests)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestNotFoundPicksMessage(t *testing.T) {
	rec := run(NotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":404`)
}
