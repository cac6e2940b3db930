package actions

import (
	"encoding/json"

	"tablelog/internal/common"
)

// DecodeLine parses one newline-delimited JSON line from the transaction
// log into an Action, rejecting an empty object, a null variant payload,
// and lines that populate more than one variant (spec §4.2 invariant).
// Unknown top-level keys are tolerated since json.Unmarshal ignores fields
// with no matching struct tag, which lets this reader stay forward-compatible
// with actions it does not yet understand (checkpointMetadata,
// domainMetadata, and similar): a line carrying only such keys decodes to an
// empty Action, which replay skips. Missing fields inside a variant payload
// are not checked; they decode to their zero values.
func DecodeLine(line []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(line, &a); err != nil {
		return Action{}, common.ErrCodecf("malformed action line: %v", err)
	}

	populated := 0
	if a.Metadata != nil {
		populated++
	}
	if a.Protocol != nil {
		populated++
	}
	if a.Add != nil {
		populated++
	}
	if a.Remove != nil {
		populated++
	}
	if a.CommitInfo != nil {
		populated++
	}

	switch populated {
	case 0:
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(line, &keys); err == nil && len(keys) > 0 {
			for _, k := range []string{"metaData", "protocol", "add", "remove", "commitInfo"} {
				if _, ok := keys[k]; ok {
					return Action{}, common.ErrCodecf("action line has a null %s payload", k)
				}
			}
			// every key names an action type this reader does not model
			return Action{}, nil
		}
		return Action{}, common.ErrCodecf("action line has no recognized variant")
	case 1:
		return a, nil
	default:
		return Action{}, common.ErrCodecf("action line populates %d variants, want exactly 1", populated)
	}
}

// EncodeAction serializes a to its single-line JSON wire form. The caller
// is responsible for ensuring exactly one variant is set; EncodeAction
// trusts its input since it only ever round-trips values built by this
// package's own constructors or DecodeLine.
func EncodeAction(a Action) ([]byte, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, common.ErrCodecf("failed to encode action: %v", err)
	}
	return raw, nil
}
