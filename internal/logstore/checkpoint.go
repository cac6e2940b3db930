package logstore

import (
	"bytes"
	"context"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet/file"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"tablelog/internal/actions"
	"tablelog/internal/common"
)

// DecodeCheckpoint reads a `<version>.checkpoint.parquet` file (spec §6) —
// a columnar encoding of the same actions a commit file carries as
// newline-delimited JSON — and reconstructs the Action batch from it. Each
// top-level Arrow column (add/remove/metaData/protocol) is a nullable
// struct; exactly one is non-null per row, mirroring the JSON wire
// convention in internal/actions. commitInfo rows are skipped: replay
// ignores commitInfo regardless (spec §4.3), so there's nothing gained by
// reconstructing it from the checkpoint.
//
// Maps serialized inside the checkpoint (partitionValues, configuration,
// format options) are read back via structStringMap; an add's tags are not
// read. This is the one place in
// the module besides internal/rowreader that touches Arrow's columnar
// array types directly.
func DecodeCheckpoint(ctx context.Context, r io.Reader) ([]actions.Action, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, common.NewErrorWithCause(common.ErrInternal, "failed to read checkpoint file", err)
	}

	pqFile, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, common.NewErrorWithCause(common.ErrCodec, "failed to open checkpoint parquet", err)
	}
	defer pqFile.Close()

	pqReader, err := pqarrow.NewFileReader(pqFile, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, common.NewErrorWithCause(common.ErrCodec, "failed to open checkpoint as arrow table", err)
	}

	table, err := pqReader.ReadTable(ctx)
	if err != nil {
		return nil, common.NewErrorWithCause(common.ErrCodec, "failed to read checkpoint table", err)
	}
	defer table.Release()

	schema := table.Schema()
	colIndex := func(name string) int {
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			return -1
		}
		return idx[0]
	}
	addIdx := colIndex("add")
	removeIdx := colIndex("remove")
	metadataIdx := colIndex("metaData")
	protocolIdx := colIndex("protocol")

	var out []actions.Action
	tr := array.NewTableReader(table, 0)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		n := int(rec.NumRows())

		var addStruct, removeStruct, metaStruct, protoStruct *array.Struct
		if addIdx >= 0 {
			addStruct, _ = rec.Column(addIdx).(*array.Struct)
		}
		if removeIdx >= 0 {
			removeStruct, _ = rec.Column(removeIdx).(*array.Struct)
		}
		if metadataIdx >= 0 {
			metaStruct, _ = rec.Column(metadataIdx).(*array.Struct)
		}
		if protocolIdx >= 0 {
			protoStruct, _ = rec.Column(protocolIdx).(*array.Struct)
		}

		for row := 0; row < n; row++ {
			switch {
			case addStruct != nil && !addStruct.IsNull(row):
				out = append(out, actions.Action{Add: decodeAddRow(addStruct, row)})
			case removeStruct != nil && !removeStruct.IsNull(row):
				out = append(out, actions.Action{Remove: decodeRemoveRow(removeStruct, row)})
			case metaStruct != nil && !metaStruct.IsNull(row):
				out = append(out, actions.Action{Metadata: decodeMetadataRow(metaStruct, row)})
			case protoStruct != nil && !protoStruct.IsNull(row):
				out = append(out, actions.Action{Protocol: decodeProtocolRow(protoStruct, row)})
			}
		}
	}

	return out, nil
}

func decodeAddRow(s *array.Struct, row int) *actions.AddFileAction {
	a := &actions.AddFileAction{
		Path:             structString(s, row, "path"),
		PartitionValues:  structStringMap(s, row, "partitionValues"),
		Size:             structInt64(s, row, "size"),
		ModificationTime: structInt64(s, row, "modificationTime"),
		DataChange:       structBool(s, row, "dataChange"),
		Stats:            structString(s, row, "stats"),
	}
	return a
}

func decodeRemoveRow(s *array.Struct, row int) *actions.RemoveFileAction {
	r := &actions.RemoveFileAction{
		Path:       structString(s, row, "path"),
		DataChange: structBool(s, row, "dataChange"),
	}
	if ts, ok := structInt64Ptr(s, row, "deletionTimestamp"); ok {
		r.DeletionTimestamp = ts
	}
	if pv := structStringMap(s, row, "partitionValues"); pv != nil {
		r.PartitionValues = pv
	}
	if sz, ok := structInt64Ptr(s, row, "size"); ok {
		r.Size = sz
	}
	return r
}

func decodeMetadataRow(s *array.Struct, row int) *actions.MetadataAction {
	return &actions.MetadataAction{
		ID:               structString(s, row, "id"),
		Name:             structString(s, row, "name"),
		Description:      structString(s, row, "description"),
		Format:           decodeFormatField(s, row, "format"),
		SchemaString:     structString(s, row, "schemaString"),
		PartitionColumns: structStringList(s, row, "partitionColumns"),
		Configuration:    structStringMap(s, row, "configuration"),
	}
}

// decodeFormatField reads the nested `format { provider, options }` struct
// column. A checkpoint written before format was tracked has no such
// field; that decodes to the zero FormatAction.
func decodeFormatField(s *array.Struct, row int, fieldName string) actions.FormatAction {
	f := fieldArray(s, fieldName)
	formatStruct, ok := f.(*array.Struct)
	if !ok || row >= formatStruct.Len() || !formatStruct.IsValid(row) {
		return actions.FormatAction{}
	}
	return actions.FormatAction{
		Provider: structString(formatStruct, row, "provider"),
		Options:  structStringMap(formatStruct, row, "options"),
	}
}

func decodeProtocolRow(s *array.Struct, row int) *actions.ProtocolAction {
	return &actions.ProtocolAction{
		MinReaderVersion: int(structInt64(s, row, "minReaderVersion")),
		MinWriterVersion: int(structInt64(s, row, "minWriterVersion")),
	}
}

// fieldArray returns the child array for fieldName within s, or nil if the
// struct has no such field (an older checkpoint schema version, etc).
func fieldArray(s *array.Struct, fieldName string) interface{} {
	dt, ok := s.DataType().(*arrow.StructType)
	if !ok {
		return nil
	}
	for i := 0; i < s.NumField(); i++ {
		if dt.Field(i).Name == fieldName {
			return s.Field(i)
		}
	}
	return nil
}

func structString(s *array.Struct, row int, fieldName string) string {
	f := fieldArray(s, fieldName)
	if arr, ok := f.(*array.String); ok && row < arr.Len() && arr.IsValid(row) {
		return arr.Value(row)
	}
	return ""
}

func structBool(s *array.Struct, row int, fieldName string) bool {
	f := fieldArray(s, fieldName)
	if arr, ok := f.(*array.Boolean); ok && row < arr.Len() && arr.IsValid(row) {
		return arr.Value(row)
	}
	return false
}

func structInt64(s *array.Struct, row int, fieldName string) int64 {
	f := fieldArray(s, fieldName)
	switch arr := f.(type) {
	case *array.Int64:
		if row < arr.Len() && arr.IsValid(row) {
			return arr.Value(row)
		}
	case *array.Int32:
		if row < arr.Len() && arr.IsValid(row) {
			return int64(arr.Value(row))
		}
	}
	return 0
}

func structInt64Ptr(s *array.Struct, row int, fieldName string) (*int64, bool) {
	f := fieldArray(s, fieldName)
	if arr, ok := f.(*array.Int64); ok && row < arr.Len() && arr.IsValid(row) {
		v := arr.Value(row)
		return &v, true
	}
	return nil, false
}

func structStringList(s *array.Struct, row int, fieldName string) []string {
	f := fieldArray(s, fieldName)
	listArr, ok := f.(*array.List)
	if !ok || row >= listArr.Len() || !listArr.IsValid(row) {
		return nil
	}
	start, end := listArr.ValueOffsets(row)
	values, ok := listArr.ListValues().(*array.String)
	if !ok {
		return nil
	}
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, values.Value(int(i)))
	}
	return out
}

func structStringMap(s *array.Struct, row int, fieldName string) map[string]string {
	f := fieldArray(s, fieldName)
	mapArr, ok := f.(*array.Map)
	if !ok || row >= mapArr.Len() || !mapArr.IsValid(row) {
		return map[string]string{}
	}
	start, end := mapArr.ValueOffsets(row)
	keys, kok := mapArr.Keys().(*array.String)
	values, vok := mapArr.Items().(*array.String)
	out := make(map[string]string, end-start)
	if !kok || !vok {
		return out
	}
	for i := start; i < end; i++ {
		out[keys.Value(int(i))] = values.Value(int(i))
	}
	return out
}
