// Package snapshot is the immutable, frozen view of replayed log state
// (spec §4.4): the latest metadata and protocol, the live-file set, and
// derived counters. A Snapshot is built once by replay.Builder.Freeze and
// never mutated afterward, so it is safe to share read-only across
// goroutines without locking.
package snapshot

import (
	"sort"
	"sync"

	"tablelog/internal/actions"
	"tablelog/internal/common"
	"tablelog/internal/schema"
)

// State is the frozen data a Snapshot is constructed from. Only
// internal/replay builds one of these; external callers only ever see the
// Snapshot wrapper.
type State struct {
	Version     int64
	Metadata    actions.MetadataAction
	Protocol    actions.ProtocolAction
	ActiveFiles map[string]actions.AddFileAction
	SizeInBytes int64
	NumMetadata int64
	NumProtocol int64
}

// Snapshot is the read-only view exposed to callers.
type Snapshot struct {
	state State

	schemaOnce   sync.Once
	schemaValue  schema.StructType
	schemaErr    error
}

var schemaRegistry = schema.NewRegistry()

// New wraps state as an immutable Snapshot. The caller (replay.Builder)
// must not retain or mutate state's maps afterward.
func New(state State) *Snapshot {
	return &Snapshot{state: state}
}

// GetVersion returns the highest applied version, or -1 if the table has
// no log yet.
func (s *Snapshot) GetVersion() int64 {
	return s.state.Version
}

// GetMetadata returns the latest metadata action seen during replay.
func (s *Snapshot) GetMetadata() actions.MetadataAction {
	return s.state.Metadata
}

// GetProtocol returns the latest protocol action seen during replay.
func (s *Snapshot) GetProtocol() actions.ProtocolAction {
	return s.state.Protocol
}

// Schema lazily parses and memoizes the metadata's schemaString, reusing a
// process-wide registry so repeated snapshots over the same metadata share
// one parsed, immutable StructType (spec.md §9 "lazy-parsed schema").
func (s *Snapshot) Schema() (schema.StructType, error) {
	s.schemaOnce.Do(func() {
		s.schemaValue, s.schemaErr = schemaRegistry.Resolve(s.state.Metadata.SchemaString)
	})
	return s.schemaValue, s.schemaErr
}

// GetAllFiles returns the active files in a stable, sorted-by-URI order.
// The order is not semantically meaningful (spec §4.4 says
// "unspecified-but-stable"); sorting simply makes it deterministic and
// therefore testable.
func (s *Snapshot) GetAllFiles() []actions.AddFileAction {
	out := make([]actions.AddFileAction, 0, len(s.state.ActiveFiles))
	for _, f := range s.state.ActiveFiles {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// GetNumOfFiles returns the number of currently active files.
func (s *Snapshot) GetNumOfFiles() int64 {
	return int64(len(s.state.ActiveFiles))
}

// GetSizeInBytes returns the sum of active files' sizes.
func (s *Snapshot) GetSizeInBytes() int64 {
	return s.state.SizeInBytes
}

// GetNumMetadata returns how many metaData actions were folded.
func (s *Snapshot) GetNumMetadata() int64 {
	return s.state.NumMetadata
}

// GetNumProtocol returns how many protocol actions were folded.
func (s *Snapshot) GetNumProtocol() int64 {
	return s.state.NumProtocol
}

// requireTable returns TableNotFound when the snapshot has no applied
// version, the contract construction code (Load) surfaces to callers.
func requireTable(s *Snapshot) error {
	if s.state.Version < 0 {
		return common.ErrTableNotFoundf("table has no committed versions")
	}
	return nil
}
