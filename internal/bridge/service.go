// Package bridge exposes a table's snapshot to an external query engine
// over HTTP and gRPC (spec §2's "an external engine" collaborator,
// SPEC_FULL.md §11). It only ever reads and republishes an already-built
// snapshot; it never writes to the log.
package bridge

import (
	"context"

	"tablelog/internal/actions"
	"tablelog/internal/logstore"
	"tablelog/internal/snapshot"
)

// Service loads snapshots for one table root against a shared log store.
// It holds no mutable state of its own, so one Service is safely shared
// across concurrent HTTP and gRPC requests.
type Service struct {
	store     logstore.Store
	tableRoot string
}

// NewService returns a Service reading tableRoot through store.
func NewService(store logstore.Store, tableRoot string) *Service {
	return &Service{store: store, tableRoot: tableRoot}
}

// FileInfo is one active data file, as published to query engines.
type FileInfo struct {
	Path            string            `json:"path"`
	Size            int64             `json:"size"`
	PartitionValues map[string]string `json:"partition_values"`
}

// ListFilesResult is the snapshot's file list plus the derived counters.
type ListFilesResult struct {
	Version     int64      `json:"version"`
	Files       []FileInfo `json:"files"`
	NumFiles    int64      `json:"num_files"`
	SizeInBytes int64      `json:"size_in_bytes"`
}

// ListFiles builds the snapshot at version (-1 for latest) and returns its
// active files.
func (s *Service) ListFiles(ctx context.Context, version int64) (*ListFilesResult, error) {
	snap, err := snapshot.Load(ctx, s.store, s.tableRoot, version)
	if err != nil {
		return nil, err
	}
	return &ListFilesResult{
		Version:     snap.GetVersion(),
		Files:       toFileInfos(snap.GetAllFiles()),
		NumFiles:    snap.GetNumOfFiles(),
		SizeInBytes: snap.GetSizeInBytes(),
	}, nil
}

// SnapshotSummary is the bridge's lightweight status view of a table.
type SnapshotSummary struct {
	Version     int64  `json:"version"`
	NumFiles    int64  `json:"num_files"`
	SizeInBytes int64  `json:"size_in_bytes"`
	SchemaJSON  string `json:"schema_json,omitempty"`
}

// Snapshot builds the snapshot at version (-1 for latest) and summarizes
// it, without materializing the full file list.
func (s *Service) Snapshot(ctx context.Context, version int64) (*SnapshotSummary, error) {
	snap, err := snapshot.Load(ctx, s.store, s.tableRoot, version)
	if err != nil {
		return nil, err
	}
	return &SnapshotSummary{
		Version:     snap.GetVersion(),
		NumFiles:    snap.GetNumOfFiles(),
		SizeInBytes: snap.GetSizeInBytes(),
		SchemaJSON:  snap.GetMetadata().SchemaString,
	}, nil
}

func toFileInfos(files []actions.AddFileAction) []FileInfo {
	out := make([]FileInfo, len(files))
	for i, f := range files {
		out[i] = FileInfo{Path: f.Path, Size: f.Size, PartitionValues: f.PartitionValues}
	}
	return out
}
