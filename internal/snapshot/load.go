package snapshot

import (
	"bufio"
	"context"
	"io"
	"strings"

	"tablelog/internal/actions"
	"tablelog/internal/clock"
	"tablelog/internal/common"
	"tablelog/internal/logstore"
	"tablelog/internal/replay"
)

// Load is the façade wiring logstore discovery, the actions wire codec, and
// the replay engine together: it locates the commit artifacts up to
// target, folds them, and freezes the result (spec §4.4 Construction).
// target < 0 means "latest". A table with no commits and no checkpoint
// surfaces TableNotFound.
func Load(ctx context.Context, store logstore.Store, tableRoot string, target int64) (*Snapshot, error) {
	plan, err := logstore.Discover(ctx, store, tableRoot, target)
	if err != nil {
		return nil, err
	}
	if plan.LatestVersion < 0 {
		return nil, common.ErrTableNotFoundf("no commits or checkpoints found under table root")
	}

	builder := replay.NewBuilder(store.Qualify, clock.System{})

	if plan.CheckpointPath != "" {
		batch, err := decodeFile(ctx, store, plan.CheckpointPath)
		if err != nil {
			return nil, err
		}
		if err := builder.Apply(plan.CheckpointVersion, batch); err != nil {
			return nil, err
		}
	}

	for i, path := range plan.CommitPaths {
		batch, err := decodeFile(ctx, store, path)
		if err != nil {
			return nil, err
		}
		if err := builder.Apply(plan.CommitVersions[i], batch); err != nil {
			return nil, err
		}
	}

	snap := builder.Freeze()
	if err := requireTable(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// decodeFile reads one log artifact, dispatching on its extension: a
// commit file is newline-delimited JSON (internal/actions.DecodeLine per
// line); a checkpoint file is the columnar encoding DecodeCheckpoint
// understands (spec §6).
func decodeFile(ctx context.Context, store logstore.Store, path string) ([]actions.Action, error) {
	rc, err := store.OpenRead(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if strings.HasSuffix(path, ".checkpoint.parquet") {
		return logstore.DecodeCheckpoint(ctx, rc)
	}
	return decodeNDJSON(rc)
}

// decodeNDJSON parses one action per non-empty line.
func decodeNDJSON(r io.Reader) ([]actions.Action, error) {
	var out []actions.Action
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		a, err := actions.DecodeLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, common.NewErrorWithCause(common.ErrCodec, "failed to scan log lines", err)
	}
	return out, nil
}
