package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-reservation/internal/utils"
)

const testSecret = "test-secret"

func echoContext(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestJWTAuthValidToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 42, "USER", 5)
	require.NoError(t, err)

	c, rec := echoContext(t, access.Token)
	require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	uid, ok := UserID(c)
	require.True(t, ok)
	assert.Equal(t, uint64(42), uid)
	assert.Equal(t, "USER", c.Get(CtxRole))
}

func TestJWTAuthRejects(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		c, rec := echoContext(t, "")
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("wrong secret", func(t *testing.T) {
		access, err := utils.NewAccessToken("other-secret", 42, "USER", 5)
		require.NoError(t, err)
		c, rec := echoContext(t, access.Token)
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("garbage token", func(t *testing.T) {
		c, rec := echoContext(t, "not-a-jwt")
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalJWT(t *testing.T) {
	t.Run("anonymous passes through", func(t *testing.T) {
		c, rec := echoContext(t, "")
		require.NoError(t, OptionalJWT(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		_, ok := UserID(c)
		assert.False(t, ok)
	})
	t.Run("invalid token stays anonymous", func(t *testing.T) {
		c, rec := echoContext(t, "garbage")
		require.NoError(t, OptionalJWT(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		_, ok := UserID(c)
		assert.False(t, ok)
	})
	t.Run("valid token identifies viewer", func(t *testing.T) {
		access, err := utils.NewAccessToken(testSecret, 7, "USER", 5)
		require.NoError(t, err)
		c, rec := echoContext(t, access.Token)
		require.NoError(t, OptionalJWT(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		uid, ok := UserID(c)
		require.True(t, ok)
		assert.Equal(t, uint64(7), uid)
	})
}

func TestRequireRole(t *testing.T) {
	run := func(role string, allowed ...string) int {
		c, rec := echoContext(t, "")
		if role != "" {
			c.Set(CtxRole, role)
		}
		require.NoError(t, RequireRole(allowed...)(okHandler)(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("ADMIN", "ADMIN"))
	assert.Equal(t, http.StatusOK, run("USER", "USER", "ADMIN"))
	assert.Equal(t, http.StatusForbidden, run("USER", "ADMIN"))
	assert.Equal(t, http.StatusForbidden, run("", "USER", "ADMIN"))
}
