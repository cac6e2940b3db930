package rowreader

import (
	"math/big"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"

	"tablelog/internal/common"
	ourschema "tablelog/internal/schema"
)

// columnSource abstracts "give me column i's array" over either a
// top-level arrow.Record or a nested *array.Struct, so Record's typed
// getters work the same way at the top level and inside GetRecord/GetList.
type columnSource interface {
	column(i int) arrow.Array
}

type recordSource struct{ rec arrow.Record }

func (s recordSource) column(i int) arrow.Array { return s.rec.Column(i) }

type structSource struct{ st *array.Struct }

func (s structSource) column(i int) arrow.Array { return s.st.Field(i) }

// Record is one row of a data file, bound to the table's schema for typed,
// by-name column access (spec §4.5).
type Record struct {
	arrowRecord arrow.Record
	row         int
	schema      ourschema.StructType
	tz          *time.Location

	source columnSource
}

func (r *Record) src() columnSource {
	if r.source != nil {
		return r.source
	}
	return recordSource{rec: r.arrowRecord}
}

// GetLength returns the number of fields in the record's schema.
func (r *Record) GetLength() int { return len(r.schema.Fields) }

// GetSchema returns the record's schema.
func (r *Record) GetSchema() ourschema.StructType { return r.schema }

func (r *Record) field(name string) (ourschema.Field, int, error) {
	for i, f := range r.schema.Fields {
		if f.Name == name {
			return f, i, nil
		}
	}
	return ourschema.Field{}, -1, common.ErrColumnNotFoundf(name)
}

func (r *Record) expect(name string, want ourschema.PrimitiveType) (ourschema.Field, arrow.Array, error) {
	f, idx, err := r.field(name)
	if err != nil {
		return f, nil, err
	}
	pt, ok := f.Type.(ourschema.PrimitiveType)
	if !ok || pt != want {
		return f, nil, common.ErrTypeMismatchf(name, string(want), f.Type.String())
	}
	return f, r.src().column(idx), nil
}

// IsNull reports whether name's value is null at this row.
func (r *Record) IsNull(name string) (bool, error) {
	_, idx, err := r.field(name)
	if err != nil {
		return false, err
	}
	return r.src().column(idx).IsNull(r.row), nil
}

func (r *Record) GetBool(name string) (bool, error) {
	_, col, err := r.expect(name, ourschema.Boolean)
	if err != nil {
		return false, err
	}
	arr, ok := col.(*array.Boolean)
	if !ok {
		return false, common.ErrTypeMismatchf(name, "boolean", "unknown")
	}
	return arr.Value(r.row), nil
}

func (r *Record) GetInt8(name string) (int8, error) {
	_, col, err := r.expect(name, ourschema.Byte)
	if err != nil {
		return 0, err
	}
	arr, ok := col.(*array.Int8)
	if !ok {
		return 0, common.ErrTypeMismatchf(name, "byte", "unknown")
	}
	return arr.Value(r.row), nil
}

func (r *Record) GetInt16(name string) (int16, error) {
	_, col, err := r.expect(name, ourschema.Short)
	if err != nil {
		return 0, err
	}
	arr, ok := col.(*array.Int16)
	if !ok {
		return 0, common.ErrTypeMismatchf(name, "short", "unknown")
	}
	return arr.Value(r.row), nil
}

func (r *Record) GetInt32(name string) (int32, error) {
	_, col, err := r.expect(name, ourschema.Integer)
	if err != nil {
		return 0, err
	}
	arr, ok := col.(*array.Int32)
	if !ok {
		return 0, common.ErrTypeMismatchf(name, "integer", "unknown")
	}
	return arr.Value(r.row), nil
}

func (r *Record) GetInt64(name string) (int64, error) {
	_, col, err := r.expect(name, ourschema.Long)
	if err != nil {
		return 0, err
	}
	arr, ok := col.(*array.Int64)
	if !ok {
		return 0, common.ErrTypeMismatchf(name, "long", "unknown")
	}
	return arr.Value(r.row), nil
}

func (r *Record) GetFloat32(name string) (float32, error) {
	_, col, err := r.expect(name, ourschema.Float)
	if err != nil {
		return 0, err
	}
	arr, ok := col.(*array.Float32)
	if !ok {
		return 0, common.ErrTypeMismatchf(name, "float", "unknown")
	}
	return arr.Value(r.row), nil
}

func (r *Record) GetFloat64(name string) (float64, error) {
	_, col, err := r.expect(name, ourschema.Double)
	if err != nil {
		return 0, err
	}
	arr, ok := col.(*array.Float64)
	if !ok {
		return 0, common.ErrTypeMismatchf(name, "double", "unknown")
	}
	return arr.Value(r.row), nil
}

func (r *Record) GetString(name string) (string, error) {
	_, col, err := r.expect(name, ourschema.String)
	if err != nil {
		return "", err
	}
	arr, ok := col.(*array.String)
	if !ok {
		return "", common.ErrTypeMismatchf(name, "string", "unknown")
	}
	return arr.Value(r.row), nil
}

// GetBinary returns name's raw byte sequence.
func (r *Record) GetBinary(name string) ([]byte, error) {
	_, col, err := r.expect(name, ourschema.Binary)
	if err != nil {
		return nil, err
	}
	arr, ok := col.(*array.Binary)
	if !ok {
		return nil, common.ErrTypeMismatchf(name, "binary", "unknown")
	}
	return arr.Value(r.row), nil
}

// GetDecimal returns name's value as an arbitrary-precision decimal,
// expressed as unscaled integer + scale (value / 10^scale == the decimal).
func (r *Record) GetDecimal(name string) (*big.Int, int32, error) {
	f, idx, err := r.field(name)
	if err != nil {
		return nil, 0, err
	}
	dt, ok := f.Type.(ourschema.DecimalType)
	if !ok {
		return nil, 0, common.ErrTypeMismatchf(name, "decimal", f.Type.String())
	}
	col := r.src().column(idx)
	switch arr := col.(type) {
	case *array.Decimal128:
		v := arr.Value(r.row)
		return v.BigInt(), int32(dt.Scale), nil
	case *array.Decimal256:
		v := arr.Value(r.row)
		return v.BigInt(), int32(dt.Scale), nil
	default:
		return nil, 0, common.ErrTypeMismatchf(name, "decimal", "unknown")
	}
}

// GetDate returns name's value as a calendar date.
func (r *Record) GetDate(name string) (time.Time, error) {
	_, col, err := r.expect(name, ourschema.Date)
	if err != nil {
		return time.Time{}, err
	}
	arr, ok := col.(*array.Date32)
	if !ok {
		return time.Time{}, common.ErrTypeMismatchf(name, "date", "unknown")
	}
	return arr.Value(r.row).ToTime(), nil
}

// GetTimestamp returns name's value as an instant, reinterpreted in the
// configured parquet time zone (spec §4.5: naive timestamps written in
// zone Z come back as the same wall-clock instant in Z).
func (r *Record) GetTimestamp(name string) (time.Time, error) {
	_, col, err := r.expect(name, ourschema.Timestamp)
	if err != nil {
		return time.Time{}, err
	}
	arr, ok := col.(*array.Timestamp)
	if !ok {
		return time.Time{}, common.ErrTypeMismatchf(name, "timestamp", "unknown")
	}
	unit := arrow.Microsecond
	if ts, ok := arr.DataType().(*arrow.TimestampType); ok {
		unit = ts.Unit
	}
	naive := arr.Value(r.row).ToTime(unit)
	return time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), r.tz), nil
}

// GetList returns name's values as a slice of sub-Records, one per list
// element, so nested struct elements get the same typed accessors; scalar
// element types are read back via the returned Records' own field name
// "value" — callers typically pair GetList with a schema they already know
// the element type of.
func (r *Record) GetList(name string) ([]*Record, error) {
	f, idx, err := r.field(name)
	if err != nil {
		return nil, err
	}
	at, ok := f.Type.(ourschema.ArrayType)
	if !ok {
		return nil, common.ErrTypeMismatchf(name, "array", f.Type.String())
	}
	col := r.src().column(idx)
	listArr, ok := col.(*array.List)
	if !ok {
		return nil, common.ErrTypeMismatchf(name, "array", "unknown")
	}
	start, end := listArr.ValueOffsets(r.row)

	elemSchema := ourschema.StructType{Fields: []ourschema.Field{{Name: "value", Type: at.Element, Nullable: at.ContainsNull}}}
	out := make([]*Record, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, &Record{
			row:    int(i),
			schema: elemSchema,
			tz:     r.tz,
			source: singleColumnSource{arr: listArr.ListValues()},
		})
	}
	return out, nil
}

// singleColumnSource wraps one array as a one-field columnSource, used by
// GetList's element Records.
type singleColumnSource struct{ arr arrow.Array }

func (s singleColumnSource) column(i int) arrow.Array { return s.arr }

// GetMap returns name's value as a Go map keyed by string (struct-typed
// map keys are not supported, matching the schema model's map(keyType,...)
// being restricted to hashable scalar keys in practice).
func (r *Record) GetMap(name string) (map[string]*Record, error) {
	f, idx, err := r.field(name)
	if err != nil {
		return nil, err
	}
	mt, ok := f.Type.(ourschema.MapType)
	if !ok {
		return nil, common.ErrTypeMismatchf(name, "map", f.Type.String())
	}
	col := r.src().column(idx)
	mapArr, ok := col.(*array.Map)
	if !ok {
		return nil, common.ErrTypeMismatchf(name, "map", "unknown")
	}
	start, end := mapArr.ValueOffsets(r.row)
	keys, ok := mapArr.Keys().(*array.String)
	if !ok {
		return nil, common.ErrTypeMismatchf(name, "map with string keys", "unknown key type")
	}
	values := mapArr.Items()

	valSchema := ourschema.StructType{Fields: []ourschema.Field{{Name: "value", Type: mt.Value, Nullable: mt.ValueContainsNull}}}
	out := make(map[string]*Record, end-start)
	for i := start; i < end; i++ {
		out[keys.Value(int(i))] = &Record{
			row:    int(i),
			schema: valSchema,
			tz:     r.tz,
			source: singleColumnSource{arr: values},
		}
	}
	return out, nil
}

// GetRecord returns name's value as a nested Record over its struct
// fields.
func (r *Record) GetRecord(name string) (*Record, error) {
	f, idx, err := r.field(name)
	if err != nil {
		return nil, err
	}
	st, ok := f.Type.(ourschema.StructType)
	if !ok {
		return nil, common.ErrTypeMismatchf(name, "struct", f.Type.String())
	}
	col := r.src().column(idx)
	structArr, ok := col.(*array.Struct)
	if !ok {
		return nil, common.ErrTypeMismatchf(name, "struct", "unknown")
	}
	return &Record{
		row:    r.row,
		schema: st,
		tz:     r.tz,
		source: structSource{st: structArr},
	}, nil
}
