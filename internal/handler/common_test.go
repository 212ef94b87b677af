package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramCtx(name, value string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func TestParamUint32(t *testing.T) {
	v, err := paramUint32(paramCtx("num", "13"), "num")
	require.NoError(t, err)
	assert.Equal(t, uint32(13), v)

	v, err = paramUint32(paramCtx("num", "4294967295"), "num")
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), v)

	// 2^32+1 would alias to 1 if truncated after a 64-bit parse.
	_, err = paramUint32(paramCtx("num", "4294967297"), "num")
	assert.Error(t, err)

	for _, bad := range []string{"", "-1", "abc", "1.5"} {
		_, err = paramUint32(paramCtx("num", bad), "num")
		assert.Error(t, err, "value %q", bad)
	}
}

func TestParamUint64(t *testing.T) {
	v, err := paramUint64(paramCtx("id", "42"), "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	_, err = paramUint64(paramCtx("id", "x"), "id")
	assert.Error(t, err)
}
