package collab

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectLargeFile(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "small.log")
	require.NoError(t, os.WriteFile(small, []byte("==1== Invalid read\n"), 0o644))
	require.False(t, DetectLargeFile(small))

	large := filepath.Join(dir, "large.log")
	buf := bytes.Repeat([]byte("x"), LargeFileThresholdBytes)
	require.NoError(t, os.WriteFile(large, buf, 0o644))
	require.True(t, DetectLargeFile(large))

	require.False(t, DetectLargeFile(StdinMarker))
	require.False(t, DetectLargeFile(filepath.Join(dir, "missing.log")))
}

func TestOpenFileSourcePlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")
	content := "==1== Invalid read\n==1==    at 0x1: f (x.c:1)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := OpenFileSource(dir, "run.log")
	require.NoError(t, err)
	defer src.Close()

	var lines []string
	for {
		line, ok, err := src.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		lines = append(lines, string(line))
	}
	require.Equal(t, []string{"==1== Invalid read", "==1==    at 0x1: f (x.c:1)"}, lines)
}

func TestOpenFileSourceGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log.gz")

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("==1== Invalid read\n==1==    at 0x1: f (x.c:1)\n"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	src, err := OpenFileSource(dir, "run.log.gz")
	require.NoError(t, err)
	defer src.Close()

	line, ok, err := src.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "==1== Invalid read", string(line))
}

func TestOpenFileSourceRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenFileSource(dir, "../escape.log")
	require.ErrorIs(t, err, ErrPathTraversal)
}
