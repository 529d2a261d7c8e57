package blob_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/wells/internal/blob"
)

func TestFSPut(t *testing.T) {
	root := filepath.Join(t.TempDir(), "exports")
	s, err := blob.NewFS(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "tables/property.csv", strings.NewReader("id,name\n"), "text/csv"))
	require.NoError(t, s.Put(ctx, "tables/property.csv", strings.NewReader("id,name\n1,P\n"), "text/csv"))

	got, err := os.ReadFile(filepath.Join(root, "tables", "property.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,P\n", string(got))

	entries, err := os.ReadDir(filepath.Join(root, "tables"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestFSPutRejectsBadKeys(t *testing.T) {
	s, err := blob.NewFS(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "  ", "../escape.csv", "a/../../b", "/etc/passwd"} {
		err := s.Put(context.Background(), key, strings.NewReader("x"), "")
		assert.Error(t, err, "key %q", key)
	}
}

func TestOpenDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := blob.Open(context.Background(), dir, blob.S3Config{})
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "a.json", strings.NewReader("[]"), "application/json"))
	assert.FileExists(t, filepath.Join(dir, "a.json"))

	_, err = blob.Open(context.Background(), "", blob.S3Config{})
	assert.Error(t, err)
	_, err = blob.Open(context.Background(), "s3:///prefix", blob.S3Config{})
	assert.Error(t, err)
}

// fakeS3 records PutObject requests made against a path-style endpoint.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	body, _ := io.ReadAll(req.Body)
	path := strings.TrimPrefix(req.URL.Path, "/")
	f.objects[path] = string(body)
	f.types[path] = req.Header.Get("Content-Type")
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
}

func newFakeS3(t *testing.T) (*fakeS3, *s3.Client) {
	t.Helper()
	rt := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return rt, client
}

func TestS3PutWithPrefix(t *testing.T) {
	rt, client := newFakeS3(t)
	s := blob.WithPrefix(blob.NewS3WithClient(client, "exports"), "/nightly/")

	err := s.Put(context.Background(), "property.csv", bytes.NewReader([]byte("id,name\n1,P\n")), "text/csv")
	require.NoError(t, err)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	require.Contains(t, rt.objects, "exports/nightly/property.csv")
	assert.Contains(t, rt.objects["exports/nightly/property.csv"], "1,P")
	assert.Equal(t, "text/csv", rt.types["exports/nightly/property.csv"])
}

func TestS3RequiresBucket(t *testing.T) {
	_, err := blob.NewS3(context.Background(), "", blob.S3Config{})
	assert.Error(t, err)
}
