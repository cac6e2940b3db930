package rowreader

import (
	"testing"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ourschema "tablelog/internal/schema"
)

func buildFlatRecord(t *testing.T) (arrow.Record, ourschema.StructType) {
	t.Helper()
	pool := memory.NewGoAllocator()

	idBld := array.NewInt32Builder(pool)
	defer idBld.Release()
	idBld.AppendValues([]int32{1, 2}, nil)
	idArr := idBld.NewArray()

	nameBld := array.NewStringBuilder(pool)
	defer nameBld.Release()
	nameBld.AppendValues([]string{"alice", "bob"}, []bool{true, true})
	nameArr := nameBld.NewArray()

	arrowSchema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	rec := array.NewRecord(arrowSchema, []arrow.Array{idArr, nameArr}, 2)

	st := ourschema.StructType{Fields: []ourschema.Field{
		{Name: "id", Type: ourschema.Integer},
		{Name: "name", Type: ourschema.String, Nullable: true},
	}}
	return rec, st
}

func TestRecord_TypedGetters(t *testing.T) {
	rec, st := buildFlatRecord(t)
	defer rec.Release()

	r := &Record{arrowRecord: rec, row: 0, schema: st, tz: time.UTC}
	id, err := r.GetInt32("id")
	require.NoError(t, err)
	assert.Equal(t, int32(1), id)

	name, err := r.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	r2 := &Record{arrowRecord: rec, row: 1, schema: st, tz: time.UTC}
	id2, err := r2.GetInt32("id")
	require.NoError(t, err)
	assert.Equal(t, int32(2), id2)
}

func TestRecord_UnknownColumn(t *testing.T) {
	rec, st := buildFlatRecord(t)
	defer rec.Release()

	r := &Record{arrowRecord: rec, row: 0, schema: st, tz: time.UTC}
	_, err := r.GetInt32("missing")
	assert.Error(t, err)
}

func TestRecord_TypeMismatch(t *testing.T) {
	rec, st := buildFlatRecord(t)
	defer rec.Release()

	r := &Record{arrowRecord: rec, row: 0, schema: st, tz: time.UTC}
	_, err := r.GetString("id")
	assert.Error(t, err)
}

func TestRecord_GetLengthAndSchema(t *testing.T) {
	rec, st := buildFlatRecord(t)
	defer rec.Release()

	r := &Record{arrowRecord: rec, row: 0, schema: st, tz: time.UTC}
	assert.Equal(t, 2, r.GetLength())
	assert.Equal(t, st, r.GetSchema())
}

func TestRecord_Timestamp_ReinterpretedInConfiguredZone(t *testing.T) {
	pool := memory.NewGoAllocator()
	jst, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	tsBld := array.NewTimestampBuilder(pool, &arrow.TimestampType{Unit: arrow.Microsecond})
	defer tsBld.Release()
	naive := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tsBld.Append(arrow.Timestamp(naive.UnixMicro()))
	tsArr := tsBld.NewArray()

	arrowSchema := arrow.NewSchema([]arrow.Field{
		{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Microsecond}},
	}, nil)
	rec := array.NewRecord(arrowSchema, []arrow.Array{tsArr}, 1)
	defer rec.Release()

	st := ourschema.StructType{Fields: []ourschema.Field{{Name: "ts", Type: ourschema.Timestamp}}}
	r := &Record{arrowRecord: rec, row: 0, schema: st, tz: jst}

	got, err := r.GetTimestamp("ts")
	require.NoError(t, err)
	assert.Equal(t, jst, got.Location())
	assert.Equal(t, 3, got.Hour())
	assert.Equal(t, 2, got.Day())
}

func TestRecord_IsNull(t *testing.T) {
	pool := memory.NewGoAllocator()
	nameBld := array.NewStringBuilder(pool)
	defer nameBld.Release()
	nameBld.AppendValues([]string{"", "bob"}, []bool{false, true})
	nameArr := nameBld.NewArray()

	arrowSchema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	rec := array.NewRecord(arrowSchema, []arrow.Array{nameArr}, 2)
	defer rec.Release()

	st := ourschema.StructType{Fields: []ourschema.Field{{Name: "name", Type: ourschema.String, Nullable: true}}}
	r := &Record{arrowRecord: rec, row: 0, schema: st, tz: time.UTC}

	isNull, err := r.IsNull("name")
	require.NoError(t, err)
	assert.True(t, isNull)
}
