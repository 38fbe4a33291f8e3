package response

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	out := decode(t, w)
	assert.Equal(t, float64(Version), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"message": "test"}, out["data"])
	assert.NotContains(t, out, "error")
}

func TestError_UsesStatusCode(t *testing.T) {
	w := httptest.NewRecorder()

	TooManyRequests(w, "slow down", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "slow down", out["error"])
	assert.Equal(t, "RATE_LIMITED", out["code"])
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.OutOfRange(9, 4), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, "OUT_OF_RANGE", out["code"])
	assert.Equal(t, map[string]any{"index": float64(9), "size": float64(4)}, out["details"])
}

func TestHandleError_Unknown(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("disk on fire"), nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	out := decode(t, w)
	assert.Equal(t, "internal server error", out["error"])
}
