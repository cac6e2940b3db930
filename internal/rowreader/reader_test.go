package rowreader

import (
	"context"
	"testing"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablelog/internal/actions"
	"tablelog/internal/snapshot"
)

// fakeBatchReader replays a fixed slice of records for one file.
type fakeBatchReader struct {
	records []arrow.Record
	idx     int
	closed  bool
}

func (f *fakeBatchReader) Next() bool {
	if f.idx >= len(f.records) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeBatchReader) Record() arrow.Record { return f.records[f.idx-1] }
func (f *fakeBatchReader) Close() error          { f.closed = true; return nil }

// fakeColumnReader maps file paths to pre-built batch readers.
type fakeColumnReader struct {
	byPath map[string][]arrow.Record
	opened []string
}

func (f *fakeColumnReader) Open(ctx context.Context, path string) (BatchReader, error) {
	f.opened = append(f.opened, path)
	return &fakeBatchReader{records: f.byPath[path]}, nil
}

func oneRowRecord(t *testing.T, id int32) arrow.Record {
	t.Helper()
	pool := memory.NewGoAllocator()
	bld := array.NewInt32Builder(pool)
	defer bld.Release()
	bld.Append(id)
	arr := bld.NewArray()
	sch := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int32}}, nil)
	return array.NewRecord(sch, []arrow.Array{arr}, 1)
}

func testSnapshot(t *testing.T, files ...string) *snapshot.Snapshot {
	t.Helper()
	active := make(map[string]actions.AddFileAction, len(files))
	for _, p := range files {
		active[p] = actions.AddFileAction{Path: p}
	}
	return snapshot.New(snapshot.State{
		Version: 0,
		Metadata: actions.MetadataAction{
			SchemaString: `{"type":"struct","fields":[{"name":"id","type":"integer","nullable":false,"metadata":{}}]}`,
		},
		ActiveFiles: active,
	})
}

func TestRowIterator_DrainsAllFilesInOrder(t *testing.T) {
	snap := testSnapshot(t, "a/1.parquet", "a/2.parquet")

	rec1 := oneRowRecord(t, 1)
	rec2 := oneRowRecord(t, 2)
	defer rec1.Release()
	defer rec2.Release()

	cr := &fakeColumnReader{byPath: map[string][]arrow.Record{
		"a/1.parquet": {rec1},
		"a/2.parquet": {rec2},
	}}

	it, err := Open(context.Background(), snap, cr, nil)
	require.NoError(t, err)

	var ids []int32
	for {
		row, err := it.Next()
		require.NoError(t, err)
		if row == nil {
			break
		}
		v, err := row.GetInt32("id")
		require.NoError(t, err)
		ids = append(ids, v)
	}
	assert.Equal(t, []int32{1, 2}, ids)
	assert.Equal(t, []string{"a/1.parquet", "a/2.parquet"}, cr.opened)
	require.NoError(t, it.Close())
}

func TestRowIterator_NoFiles(t *testing.T) {
	snap := testSnapshot(t)
	cr := &fakeColumnReader{byPath: map[string][]arrow.Record{}}

	it, err := Open(context.Background(), snap, cr, nil)
	require.NoError(t, err)

	row, err := it.Next()
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestRowIterator_DefaultsToUTC(t *testing.T) {
	snap := testSnapshot(t)
	cr := &fakeColumnReader{byPath: map[string][]arrow.Record{}}

	it, err := Open(context.Background(), snap, cr, nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, it.tz)
}
