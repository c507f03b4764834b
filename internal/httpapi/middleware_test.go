package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusai/internal/logging"
	"nexusai/internal/manager"
)

func TestAccessLogRecordsRequests(t *testing.T) {
	tempDir := t.TempDir()
	fileTemplate := filepath.Join(tempDir, "access-%s.jsonl")

	accessLog, err := logging.NewAccessLogger(fileTemplate, 10*1024, 5, 100, 50*time.Millisecond)
	require.NoError(t, err)

	mux := NewRouter(&Dependencies{
		Manager:   manager.New(manager.WithFactory(newFakeFactory())),
		Store:     &memCredStore{},
		AccessLog: accessLog,
	})

	rec := doJSON(t, mux, http.MethodGet, "/api/v1/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	requestID := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)

	accessLog.Shutdown()

	matches, err := filepath.Glob(fmt.Sprintf(fileTemplate, "*"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	var entry logging.AccessEntry
	line := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)[0]
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, requestID, entry.RequestID)
	assert.Equal(t, http.MethodGet, entry.Method)
	assert.Equal(t, "/api/v1/providers", entry.Path)
	assert.Equal(t, http.StatusOK, entry.Status)
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, "caller-supplied", rec.Header().Get("X-Request-ID"))
}
