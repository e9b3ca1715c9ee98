package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIsUpstreamError(t *testing.T) {
	base := errors.New("connection refused")
	upstream := NewUpstreamError("search", "content search", base)

	assert.True(t, IsUpstreamError(upstream))
	assert.True(t, IsUpstreamError(fmt.Errorf("plan pipeline: %w", upstream)))
	assert.False(t, IsUpstreamError(base))
	assert.False(t, IsUpstreamError(nil))

	assert.ErrorIs(t, upstream, base)
	assert.Contains(t, upstream.Error(), "search")
	assert.Contains(t, upstream.Error(), "content search")
}

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, err)
	return w
}

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, respond(ErrUnauthorized).Code)
	assert.Equal(t, http.StatusForbidden, respond(ErrForbidden).Code)
	assert.Equal(t, http.StatusNotFound, respond(ErrNotFound).Code)
	assert.Equal(t, http.StatusNotFound, respond(ErrTaskNotFound).Code)
	assert.Equal(t, http.StatusBadRequest, respond(ErrInvalidPeriod).Code)
	assert.Equal(t, http.StatusInternalServerError, respond(NewUpstreamError("ai", "chat", errors.New("boom"))).Code)
	assert.Equal(t, http.StatusInternalServerError, respond(errors.New("unexpected")).Code)
}
