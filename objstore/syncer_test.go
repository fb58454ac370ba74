package objstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsDownloadSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello"), 0o644))

	s := &Syncer{dataDir: dir}
	assert.True(t, s.needsDownload(local, Object{Size: 99}))
}

func TestNeedsDownloadMultipartETagSkipsMD5(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "f.txt")
	content := []byte("hello")
	require.NoError(t, os.WriteFile(local, content, 0o644))

	s := &Syncer{dataDir: dir}
	assert.False(t, s.needsDownload(local, Object{Size: int64(len(content)), ETag: `"abcd-2"`}))
}

func TestNeedsDownloadMatchingMD5(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "f.txt")
	content := []byte("hello")
	require.NoError(t, os.WriteFile(local, content, 0o644))

	sum, err := md5sum(local)
	require.NoError(t, err)

	s := &Syncer{dataDir: dir}
	assert.False(t, s.needsDownload(local, Object{Size: int64(len(content)), ETag: sum}))
}

func TestLocalPathStripsPrefix(t *testing.T) {
	s := &Syncer{dataDir: "/data", store: fakeStore{prefix: "exports/"}}
	assert.Equal(t, filepath.Join("/data", "ds1", "metadata.yaml"), s.localPath("exports/ds1/metadata.yaml"))
}

type fakeStore struct{ prefix string }

func (f fakeStore) Prefix() string { return f.prefix }
func (f fakeStore) List(ctx context.Context) ([]Object, error) { return nil, nil }
func (f fakeStore) Download(ctx context.Context, key string, w io.WriterAt) error { return nil }
