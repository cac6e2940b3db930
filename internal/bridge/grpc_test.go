package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGRPCServer_GetSnapshot(t *testing.T) {
	g := NewGRPCServer(newTestService(t), nil)
	summary, err := g.getSnapshot(context.Background(), &SnapshotRequest{Version: -1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Version)
	assert.Equal(t, int64(1), summary.NumFiles)
}

func TestGRPCServer_ListFiles(t *testing.T) {
	g := NewGRPCServer(newTestService(t), nil)
	result, err := g.listFiles(context.Background(), &SnapshotRequest{Version: -1})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	want, err := g.service.store.Qualify("a/f1.parquet")
	require.NoError(t, err)
	assert.Equal(t, want, result.Files[0].Path)
}

func TestGRPCServer_Register_DoesNotPanic(t *testing.T) {
	g := NewGRPCServer(newTestService(t), nil)
	srv := g.Register()
	assert.NotNil(t, srv)
}
