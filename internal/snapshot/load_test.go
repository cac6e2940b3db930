package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablelog/internal/logstore"
)

func writeCommit(t *testing.T, dir string, version int, lines ...string) {
	t.Helper()
	name := fmt.Sprintf("%020d.json", version)
	full := filepath.Join(dir, "_delta_log", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))

	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestLoad_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeCommit(t, dir, 0,
		`{"metaData":{"id":"m1","schemaString":"{\"type\":\"struct\",\"fields\":[]}","partitionColumns":[]}}`,
		`{"add":{"path":"a/f1.parquet","partitionValues":{},"size":10,"modificationTime":1,"dataChange":true}}`,
	)
	writeCommit(t, dir, 1,
		`{"remove":{"path":"a/f1.parquet","dataChange":true}}`,
	)

	store, err := logstore.NewLocalStore(dir)
	require.NoError(t, err)

	snap, err := Load(context.Background(), store, "", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.GetVersion())
	assert.Empty(t, snap.GetAllFiles())
	assert.Equal(t, int64(1), snap.GetNumMetadata())
}

func TestLoad_NoLogIsTableNotFound(t *testing.T) {
	dir := t.TempDir()
	store, err := logstore.NewLocalStore(dir)
	require.NoError(t, err)

	_, err = Load(context.Background(), store, "", -1)
	assert.Error(t, err)
}

func TestLoad_ExplicitVersionTarget(t *testing.T) {
	dir := t.TempDir()
	writeCommit(t, dir, 0,
		`{"add":{"path":"a/f1.parquet","partitionValues":{},"size":10,"modificationTime":1,"dataChange":true}}`,
	)
	writeCommit(t, dir, 1,
		`{"remove":{"path":"a/f1.parquet","dataChange":true}}`,
	)

	store, err := logstore.NewLocalStore(dir)
	require.NoError(t, err)

	snap, err := Load(context.Background(), store, "", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.GetVersion())
	assert.Len(t, snap.GetAllFiles(), 1)
}
