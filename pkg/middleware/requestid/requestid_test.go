package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newRequestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestMiddlewareIssuesUUID(t *testing.T) {
	c, w := newRequestContext(t)

	Middleware()(c)

	id := Value(c)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Header().Get(Header))
}

func TestMiddlewareKeepsInboundID(t *testing.T) {
	c, w := newRequestContext(t)
	c.Request.Header.Set(Header, "trace-123")

	Middleware()(c)

	assert.Equal(t, "trace-123", Value(c))
	assert.Equal(t, "trace-123", w.Header().Get(Header))
}
