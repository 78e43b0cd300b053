package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestSuccessWritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	resp := Success(c, 0, map[string]int{"n": 1}, "ok", nil)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, map[string]any{"n": float64(1)}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestErrorWritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error[any](c, 0, "bad", map[string]string{"email": "is required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "bad", body["message"])
	assert.Equal(t, map[string]any{"email": "is required"}, body["error"])
}
