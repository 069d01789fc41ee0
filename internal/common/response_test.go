package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// brokenWriter accepts headers but fails every body write, like a peer that
// hung up mid-response.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("write: broken pipe")
}

func TestWriteJSON(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	t.Run("encodes body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusCreated, MessageResponse{Msg: "ok"})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"msg":"ok"}`, rec.Body.String())
	})

	t.Run("nil body writes headers only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, rec.Body.Len())
	})

	t.Run("failed body write is logged", func(t *testing.T) {
		logs.TakeAll()
		w := brokenWriter{httptest.NewRecorder()}
		WriteJSON(w, http.StatusOK, MessageResponse{Msg: "lost"})

		assert.Equal(t, http.StatusOK, w.Code)
		entries := logs.FilterMessage("write response body").AllUntimed()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
		assert.Equal(t, "write: broken pipe", entries[0].ContextMap()["error"])
	})

	t.Run("unencodable body is logged", func(t *testing.T) {
		logs.TakeAll()
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusOK, map[string]interface{}{"ch": make(chan int)})

		assert.Equal(t, 1, logs.FilterMessage("write response body").Len())
	})
}
