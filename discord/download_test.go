package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/K3das/clementine/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDownloadServer(t *testing.T) (*DiscordBot, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/small.mp3":
			_, _ = w.Write([]byte("ID3 small upload"))
		case "/big.mp3":
			_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return &DiscordBot{http: server.Client()}, server
}

func tempDirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestDownloadAttachmentToTemp(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	b, server := newDownloadServer(t)

	path, err := b.downloadAttachmentToTemp(context.Background(), server.URL+"/small.mp3", ".mp3", 1024)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".mp3", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID3 small upload", string(data))

	// the caller owns the file
	require.NoError(t, os.Remove(path))
	assert.Empty(t, tempDirEntries(t, dir))
}

func TestDownloadAttachmentToTempTooBig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	b, server := newDownloadServer(t)

	path, err := b.downloadAttachmentToTemp(context.Background(), server.URL+"/big.mp3", ".mp3", 1024)
	assert.ErrorIs(t, err, utils.ErrIOLimitReached)
	assert.Empty(t, path)
	assert.Empty(t, tempDirEntries(t, dir))
}

func TestDownloadAttachmentToTempBadStatus(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	b, server := newDownloadServer(t)

	path, err := b.downloadAttachmentToTemp(context.Background(), server.URL+"/missing.mp3", ".mp3", 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Empty(t, path)
	assert.Empty(t, tempDirEntries(t, dir))
}
