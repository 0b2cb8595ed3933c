package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTextStable(t *testing.T) {
	a := HashText("text-embedding-004", "hello")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashText("text-embedding-004", "hello"))
	assert.NotEqual(t, a, HashText("text-embedding-004hello"))
}

func TestRespondWithUpstreamError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithUpstreamError(c, "embedding failed", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "upstream_error", body.ErrorCode)
	assert.Equal(t, "embedding failed", body.Message)
}

func TestTimeouts(t *testing.T) {
	ctx, cancel := WithShortTimeout(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(ShortTimeout), deadline, time.Second)
}
