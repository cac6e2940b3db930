package logstore

import (
	"context"
	"encoding/json"
	"io"
	"regexp"
	"sort"
	"strconv"

	"tablelog/internal/common"
)

var (
	commitNamePattern     = regexp.MustCompile(`^(\d{20})\.json$`)
	checkpointNamePattern = regexp.MustCompile(`^(\d{20})\.checkpoint\.parquet$`)
)

// LastCheckpointPointer is the `_last_checkpoint` file's JSON shape
// (spec §6): a tiny pointer so discovery does not have to list every
// checkpoint file to find the newest one.
type LastCheckpointPointer struct {
	Version int64 `json:"version"`
	Size    int64 `json:"size"`
	Parts   *int  `json:"parts,omitempty"`
}

// Plan is the ordered set of log artifacts Load must feed into the replay
// engine to reach target: an optional checkpoint to seed the builder, then
// every commit strictly after it up to and including target.
type Plan struct {
	CheckpointVersion int64  // -1 if no checkpoint applies
	CheckpointPath    string
	CommitPaths       []string
	CommitVersions    []int64
	LatestVersion     int64 // -1 if the log directory is empty
}

const logDirName = "_delta_log"

// Discover lists logDir (the table root's `_delta_log`-style directory),
// parses commit and checkpoint file names, and builds the ordered replay
// plan for target. target < 0 means "latest".
func Discover(ctx context.Context, store Store, tableRoot string, target int64) (*Plan, error) {
	prefix := joinPrefix(tableRoot, logDirName)
	entries, err := store.ListLog(ctx, prefix)
	if err != nil {
		return nil, err
	}

	commitVersions := map[int64]string{}
	checkpointVersions := map[int64]string{}
	for _, e := range entries {
		name := baseName(e.Path)
		if m := commitNamePattern.FindStringSubmatch(name); m != nil {
			v, _ := strconv.ParseInt(m[1], 10, 64)
			commitVersions[v] = e.Path
		} else if m := checkpointNamePattern.FindStringSubmatch(name); m != nil {
			v, _ := strconv.ParseInt(m[1], 10, 64)
			checkpointVersions[v] = e.Path
		}
	}

	if len(commitVersions) == 0 && len(checkpointVersions) == 0 {
		return &Plan{CheckpointVersion: -1, LatestVersion: -1}, nil
	}

	latest := int64(-1)
	for v := range commitVersions {
		if v > latest {
			latest = v
		}
	}
	for v := range checkpointVersions {
		if v > latest {
			latest = v
		}
	}

	if target < 0 {
		target = latest
	}
	if target > latest {
		return nil, common.ErrTableNotFoundf("requested version %d exceeds latest available version %d", target, latest)
	}

	checkpointVersion := int64(-1)
	for v := range checkpointVersions {
		if v <= target && v > checkpointVersion {
			checkpointVersion = v
		}
	}

	if ptr, err := readLastCheckpoint(ctx, store, tableRoot); err == nil && ptr.Version <= target && ptr.Version > checkpointVersion {
		if _, ok := checkpointVersions[ptr.Version]; ok {
			checkpointVersion = ptr.Version
		}
	}

	var versions []int64
	for v := range commitVersions {
		if v > checkpointVersion && v <= target {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	paths := make([]string, len(versions))
	for i, v := range versions {
		paths[i] = commitVersions[v]
	}

	plan := &Plan{
		CheckpointVersion: checkpointVersion,
		CommitPaths:       paths,
		CommitVersions:    versions,
		LatestVersion:     target,
	}
	if checkpointVersion >= 0 {
		plan.CheckpointPath = checkpointVersions[checkpointVersion]
	}
	return plan, nil
}

func readLastCheckpoint(ctx context.Context, store Store, tableRoot string) (*LastCheckpointPointer, error) {
	path := joinPrefix(tableRoot, logDirName, "_last_checkpoint")
	rc, err := store.OpenRead(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var ptr LastCheckpointPointer
	if err := json.Unmarshal(raw, &ptr); err != nil {
		return nil, common.ErrCodecf("malformed _last_checkpoint: %v", err)
	}
	return &ptr, nil
}

func joinPrefix(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out == "" {
			out = p
			continue
		}
		out += "/" + p
	}
	return out
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
