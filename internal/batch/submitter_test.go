package batch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai/internal/models"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHTTPSubmitterSendsOneCombinedRequest(t *testing.T) {
	var requests int
	var receivedNames []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.NoError(t, r.ParseMultipartForm(32<<20))
		for _, fh := range r.MultipartForm.File["files"] {
			receivedNames = append(receivedNames, fh.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[` +
			`{"filename":"a.pdf","status":"ok","candidate_id":"` + uuid.New().String() + `"},` +
			`{"filename":"b.pdf","status":"error","detail":"unreadable"}]}`))
	}))
	defer server.Close()

	items := []UploadItem{
		{ID: uuid.New(), Filename: "a.pdf", Path: writeTempFile(t, "a.pdf", "resume a")},
		{ID: uuid.New(), Filename: "b.pdf", Path: writeTempFile(t, "b.pdf", "resume b")},
	}

	submitter := NewHTTPSubmitter(server.URL, time.Second)
	outcomes, err := submitter.Submit(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, receivedNames)
	require.Len(t, outcomes, 2)
	assert.Equal(t, models.OutcomeOK, outcomes[0].Status)
	assert.Equal(t, models.OutcomeError, outcomes[1].Status)
	assert.Equal(t, "unreadable", outcomes[1].Detail)
}

func TestHTTPSubmitterNonOKStatusIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	items := []UploadItem{
		{ID: uuid.New(), Filename: "a.pdf", Path: writeTempFile(t, "a.pdf", "resume a")},
	}

	submitter := NewHTTPSubmitter(server.URL, time.Second)
	outcomes, err := submitter.Submit(context.Background(), items)
	require.Error(t, err)
	assert.Nil(t, outcomes)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPSubmitterMissingFile(t *testing.T) {
	submitter := NewHTTPSubmitter("http://127.0.0.1:0/upload", time.Second)
	items := []UploadItem{
		{ID: uuid.New(), Filename: "ghost.pdf", Path: "/nonexistent/ghost.pdf"},
	}

	_, err := submitter.Submit(context.Background(), items)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost.pdf")
}
