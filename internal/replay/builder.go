// Package replay implements the log replay engine (spec §4.3): a mutable
// Builder that folds ordered per-version action batches into snapshot
// state, frozen into an immutable snapshot.Snapshot on demand. The engine
// performs no I/O of its own; path qualification is injected as a
// Qualifier capability so the fold can be unit-tested without a
// filesystem.
package replay

import (
	"tablelog/internal/actions"
	"tablelog/internal/clock"
	"tablelog/internal/common"
	"tablelog/internal/snapshot"
)

// Qualifier canonicalizes a raw action path into the URI used as the
// activeFiles/tombstones key (spec §4.3 canonicalize()).
type Qualifier func(path string) (string, error)

// Builder owns the mutable state of an in-progress replay. It must never
// be exposed outside this package in a form a caller could keep mutating
// after a snapshot has been frozen from it.
type Builder struct {
	qualify Qualifier
	clock   clock.Clock

	currentVersion int64
	metadata       *actions.MetadataAction
	protocol       *actions.ProtocolAction
	activeFiles    map[string]actions.AddFileAction
	tombstones     map[string]actions.RemoveFileAction
	sizeInBytes    int64
	numMetadata    int64
	numProtocol    int64
}

// NewBuilder returns an empty Builder, ready to have a checkpoint and/or
// commit batches applied to it starting from version 0 (or, if seeded by a
// checkpoint, from the checkpoint's version). clk backfills
// RemoveFileAction.DeletionTimestamp when a remove action omits it (spec
// §6.3); it is never consulted by the core add/remove fold otherwise.
func NewBuilder(qualify Qualifier, clk clock.Clock) *Builder {
	return &Builder{
		qualify:        qualify,
		clock:          clk,
		currentVersion: -1,
		activeFiles:    make(map[string]actions.AddFileAction),
		tombstones:     make(map[string]actions.RemoveFileAction),
	}
}

// Apply folds one version's ordered batch of actions into the builder's
// state. version must be exactly one more than the last applied version,
// except for the very first call, which seeds currentVersion from -1 (so
// either a checkpoint batch or commit 0 may start replay). A contiguity
// violation is a programmer error (EngineInvariantViolation), not a user
// error: the caller is expected to discard the builder, never retry on the
// same instance.
//
// sizeInBytes is advanced unconditionally on every add and only subtracted
// on remove when the file being removed was active; this is correct only
// because replay order guarantees no duplicate AddFile at the same URI
// occurs without an intervening Remove within one contiguous Apply
// sequence (spec.md §9 Q3). The invariant is stated here; Apply does not
// check it, so a duplicate AddFile at an active URI adds its size twice.
func (b *Builder) Apply(version int64, batch []actions.Action) error {
	if !(b.currentVersion == -1 || version == b.currentVersion+1) {
		return common.ErrEngineInvariantViolationf(
			"non-contiguous version: have %d, got %d", b.currentVersion, version)
	}

	for _, a := range batch {
		switch {
		case a.Metadata != nil:
			b.metadata = a.Metadata
			b.numMetadata++

		case a.Protocol != nil:
			b.protocol = a.Protocol
			b.numProtocol++

		case a.Add != nil:
			if err := b.applyAdd(*a.Add); err != nil {
				return err
			}

		case a.Remove != nil:
			if err := b.applyRemove(*a.Remove); err != nil {
				return err
			}

		case a.CommitInfo != nil:
			// ignored by replay (spec §4.3)

		default:
			// unrecognized variant, ignored for forward compatibility
		}
	}

	b.currentVersion = version
	return nil
}

func (b *Builder) applyAdd(a actions.AddFileAction) error {
	uri, err := b.qualify(a.Path)
	if err != nil {
		return common.NewErrorWithCause(common.ErrEngineInvariantViolation, "add path canonicalization failed", err).
			WithContext("path", a.Path)
	}

	normalized := a
	normalized.Path = uri
	// dataChange is always folded to false, preserved exactly as the
	// source does it (spec.md §9 Q1) — left unconditional, not "fixed".
	normalized.DataChange = false

	if _, wasTombstoned := b.tombstones[uri]; wasTombstoned {
		delete(b.tombstones, uri)
	}
	b.activeFiles[uri] = normalized
	b.sizeInBytes += normalized.Size
	return nil
}

func (b *Builder) applyRemove(r actions.RemoveFileAction) error {
	uri, err := b.qualify(r.Path)
	if err != nil {
		return common.NewErrorWithCause(common.ErrEngineInvariantViolation, "remove path canonicalization failed", err).
			WithContext("path", r.Path)
	}

	normalized := r
	normalized.Path = uri
	normalized.DataChange = false
	if normalized.DeletionTimestamp == nil && b.clock != nil {
		now := b.clock.NowMillis()
		normalized.DeletionTimestamp = &now
	}

	if prev, ok := b.activeFiles[uri]; ok {
		delete(b.activeFiles, uri)
		b.sizeInBytes -= prev.Size
	}
	b.tombstones[uri] = normalized
	return nil
}

// Freeze produces the immutable snapshot.Snapshot view of the builder's
// current state. The builder remains independently usable afterward (the
// maps are copied, not shared), but doing so is not part of this package's
// supported contract — callers should treat a builder as single-use once
// frozen.
func (b *Builder) Freeze() *snapshot.Snapshot {
	files := make(map[string]actions.AddFileAction, len(b.activeFiles))
	for k, v := range b.activeFiles {
		files[k] = v
	}

	var metadata actions.MetadataAction
	if b.metadata != nil {
		metadata = *b.metadata
	}
	var protocol actions.ProtocolAction
	if b.protocol != nil {
		protocol = *b.protocol
	}

	return snapshot.New(snapshot.State{
		Version:     b.currentVersion,
		Metadata:    metadata,
		Protocol:    protocol,
		ActiveFiles: files,
		SizeInBytes: b.sizeInBytes,
		NumMetadata: b.numMetadata,
		NumProtocol: b.numProtocol,
	})
}
