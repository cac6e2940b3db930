// Package actions implements the discriminated-union log actions the
// transaction log is made of (spec §3, §4.2): metaData, protocol, add,
// remove and commitInfo.
package actions

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FormatAction names the data file format a table's metaData declares,
// e.g. provider "parquet" with codec/encoding options. Matches the
// `format` sub-object nested in `metaData`.
type FormatAction struct {
	Provider string            `json:"provider"`
	Options  map[string]string `json:"options,omitempty"`
}

// MetadataAction describes the table's current schema and partitioning. It
// matches the `metaData` entry on the wire.
type MetadataAction struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	Format           FormatAction      `json:"format"`
	SchemaString     string            `json:"schemaString"`
	PartitionColumns []string          `json:"partitionColumns"`
	Configuration    map[string]string `json:"configuration,omitempty"`
	CreatedTime      *int64            `json:"createdTime,omitempty"`
}

// NewMetadataID mints a fresh id for a MetadataAction the way the original
// commit writer does, via a random UUID.
func NewMetadataID() string {
	return uuid.NewString()
}

// ProtocolAction records the minimum reader/writer version a client must
// support to operate on the table. Matches the `protocol` entry.
type ProtocolAction struct {
	MinReaderVersion int `json:"minReaderVersion"`
	MinWriterVersion int `json:"minWriterVersion"`
}

// AddFileAction records a data file added to the table. Matches the `add`
// entry.
type AddFileAction struct {
	Path             string            `json:"path"`
	PartitionValues  map[string]string `json:"partitionValues"`
	Size             int64             `json:"size"`
	ModificationTime int64             `json:"modificationTime"`
	DataChange       bool              `json:"dataChange"`
	Stats            string            `json:"stats,omitempty"`
	Tags             map[string]string `json:"tags,omitempty"`
}

// RemoveFileAction tombstones a previously added data file. Matches the
// `remove` entry.
type RemoveFileAction struct {
	Path                 string            `json:"path"`
	DeletionTimestamp    *int64            `json:"deletionTimestamp,omitempty"`
	DataChange           bool              `json:"dataChange"`
	PartitionValues      map[string]string `json:"partitionValues,omitempty"`
	Size                 *int64            `json:"size,omitempty"`
}

// MillisTimestamp marshals as a millisecond-precision ISO-8601/RFC3339
// string on the wire, distinct from the plain integer millis used by
// deletionTimestamp and similar fields elsewhere in this package.
type MillisTimestamp time.Time

const millisTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func (t MillisTimestamp) MarshalJSON() ([]byte, error) {
	s := time.Time(t).UTC().Format(millisTimestampLayout)
	return json.Marshal(s)
}

func (t *MillisTimestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("commitInfo timestamp %q is not ISO-8601: %w", s, err)
	}
	*t = MillisTimestamp(parsed)
	return nil
}

// Time returns the underlying time.Time value.
func (t MillisTimestamp) Time() time.Time {
	return time.Time(t)
}

// CommitInfoAction carries free-form, verbatim-preserved metadata about the
// commit that produced a version. Matches the `commitInfo` entry.
//
// Version is a pointer because a commitInfo entry does not always record
// its own version number on the wire; callers that need the version use the
// log segment's file name instead (see Open Question decision in
// SPEC_FULL.md §14).
type CommitInfoAction struct {
	Version             *int64                     `json:"version,omitempty"`
	Timestamp           MillisTimestamp            `json:"timestamp"`
	UserID              string                     `json:"userId,omitempty"`
	UserName            string                     `json:"userName,omitempty"`
	Operation           string                     `json:"operation"`
	OperationParameters map[string]json.RawMessage `json:"operationParameters,omitempty"`
	Job                 json.RawMessage            `json:"job,omitempty"`
	Notebook            json.RawMessage            `json:"notebook,omitempty"`
	ReadVersion         *int64                     `json:"readVersion,omitempty"`
	IsolationLevel      string                     `json:"isolationLevel,omitempty"`
	IsBlindAppend       *bool                      `json:"isBlindAppend,omitempty"`
	OperationMetrics    map[string]string          `json:"operationMetrics,omitempty"`
	UserMetadata        string                     `json:"userMetadata,omitempty"`
}

// Action is the envelope for one line of the transaction log. At most one
// field is populated per instance; DecodeLine enforces this. No field is
// populated when the line holds only action types this package does not
// model.
type Action struct {
	Metadata   *MetadataAction   `json:"metaData,omitempty"`
	Protocol   *ProtocolAction   `json:"protocol,omitempty"`
	Add        *AddFileAction    `json:"add,omitempty"`
	Remove     *RemoveFileAction `json:"remove,omitempty"`
	CommitInfo *CommitInfoAction `json:"commitInfo,omitempty"`
}

// Kind names which variant is populated, for logging and error messages.
func (a Action) Kind() string {
	switch {
	case a.Metadata != nil:
		return "metaData"
	case a.Protocol != nil:
		return "protocol"
	case a.Add != nil:
		return "add"
	case a.Remove != nil:
		return "remove"
	case a.CommitInfo != nil:
		return "commitInfo"
	default:
		return "unknown"
	}
}
