package archive

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadPutsObject(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Contains(t, r.Header.Get("Authorization"), "AKIDTEST")
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := New(context.Background(), Config{
		Bucket:          "tips",
		Endpoint:        srv.URL,
		Region:          "auto",
		AccessKeyID:     "AKIDTEST",
		SecretAccessKey: "secret",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	loc, err := u.Upload(context.Background(), "exports/tips.csv", []byte("id,match\n1,9\n"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "s3://tips/exports/tips.csv", loc)
	assert.Equal(t, "/tips/exports/tips.csv", gotPath)
	assert.Equal(t, "text/csv", gotType)
	assert.Equal(t, "id,match\n1,9\n", string(gotBody))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	assert.ErrorContains(t, err, "bucket")
}

func TestExportKey(t *testing.T) {
	ts := time.Date(2026, 3, 10, 12, 30, 0, 0, time.FixedZone("AEDT", 11*3600))
	assert.Equal(t, "exports/tips-20260310T013000Z.csv", ExportKey(ts))
}
