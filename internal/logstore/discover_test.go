package logstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_NoLog(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	plan, err := Discover(context.Background(), store, "", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), plan.LatestVersion)
	assert.Empty(t, plan.CommitPaths)
}

func TestDiscover_CommitsOnlyLatest(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "_delta_log/00000000000000000000.json", "{}")
	writeTestFile(t, dir, "_delta_log/00000000000000000001.json", "{}")
	writeTestFile(t, dir, "_delta_log/00000000000000000002.json", "{}")

	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	plan, err := Discover(context.Background(), store, "", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), plan.LatestVersion)
	assert.Equal(t, int64(-1), plan.CheckpointVersion)
	assert.Equal(t, []int64{0, 1, 2}, plan.CommitVersions)
}

func TestDiscover_ChecksCheckpointShortcut(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "_delta_log/00000000000000000000.json", "{}")
	writeTestFile(t, dir, "_delta_log/00000000000000000001.json", "{}")
	writeTestFile(t, dir, "_delta_log/00000000000000000001.checkpoint.parquet", "binary")
	writeTestFile(t, dir, "_delta_log/00000000000000000002.json", "{}")

	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	plan, err := Discover(context.Background(), store, "", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), plan.CheckpointVersion)
	assert.Equal(t, []int64{2}, plan.CommitVersions)
}

func TestDiscover_TargetBeyondLatestErrors(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "_delta_log/00000000000000000000.json", "{}")

	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	_, err = Discover(context.Background(), store, "", 5)
	assert.Error(t, err)
}
