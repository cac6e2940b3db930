package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType_Primitives(t *testing.T) {
	for _, tag := range []string{"boolean", "byte", "short", "integer", "long", "float", "double", "string", "binary", "date", "timestamp"} {
		raw, _ := json.Marshal(tag)
		dt, err := ParseType(raw)
		require.NoError(t, err)
		assert.Equal(t, PrimitiveType(tag), dt)
	}
}

func TestParseType_UnknownPrimitive(t *testing.T) {
	raw, _ := json.Marshal("timestampz")
	_, err := ParseType(raw)
	assert.Error(t, err)
}

func TestParseType_Decimal(t *testing.T) {
	raw, _ := json.Marshal("decimal(10,2)")
	dt, err := ParseType(raw)
	require.NoError(t, err)
	assert.Equal(t, DecimalType{Precision: 10, Scale: 2}, dt)
}

func TestParseType_DecimalBareFallback(t *testing.T) {
	raw, _ := json.Marshal("decimal")
	dt, err := ParseType(raw)
	require.NoError(t, err)
	assert.Equal(t, DecimalType{Precision: 10, Scale: 0}, dt)
}

func TestParseType_DecimalOutOfRange(t *testing.T) {
	raw, _ := json.Marshal("decimal(39,2)")
	_, err := ParseType(raw)
	assert.Error(t, err)
}

func TestParseType_ArrayAndMap(t *testing.T) {
	arr := `{"type":"array","elementType":"integer","containsNull":true}`
	dt, err := ParseType(json.RawMessage(arr))
	require.NoError(t, err)
	assert.Equal(t, ArrayType{Element: Integer, ContainsNull: true}, dt)

	m := `{"type":"map","keyType":"string","valueType":"long","valueContainsNull":false}`
	dt, err = ParseType(json.RawMessage(m))
	require.NoError(t, err)
	assert.Equal(t, MapType{Key: String, Value: Long, ValueContainsNull: false}, dt)
}

func TestParseType_StructDuplicateFieldNames(t *testing.T) {
	s := `{"type":"struct","fields":[
		{"name":"a","type":"integer","nullable":true},
		{"name":"a","type":"string","nullable":true}
	]}`
	_, err := ParseType(json.RawMessage(s))
	assert.Error(t, err)
}

func TestParseType_UnknownTypeTag(t *testing.T) {
	_, err := ParseType(json.RawMessage(`{"type":"enum"}`))
	assert.Error(t, err)
}

func TestRoundTrip_SchemaString(t *testing.T) {
	schemaStr := `{"type":"struct","fields":[
		{"name":"id","type":"long","nullable":false,"metadata":{}},
		{"name":"name","type":"string","nullable":true,"metadata":{}},
		{"name":"price","type":"decimal(10,2)","nullable":true,"metadata":{}},
		{"name":"tags","type":{"type":"array","elementType":"string","containsNull":true},"nullable":true,"metadata":{}},
		{"name":"attrs","type":{"type":"map","keyType":"string","valueType":"string","valueContainsNull":false},"nullable":true,"metadata":{}}
	]}`

	st, err := ParseSchemaString(schemaStr)
	require.NoError(t, err)
	require.Len(t, st.Fields, 5)

	emitted, err := EmitSchemaString(st)
	require.NoError(t, err)

	st2, err := ParseSchemaString(emitted)
	require.NoError(t, err)
	assert.Equal(t, st, st2)
}

func TestParseSchemaString_RejectsNonStructRoot(t *testing.T) {
	_, err := ParseSchemaString(`"integer"`)
	assert.Error(t, err)
}

func TestField_MetadataDefaultsToEmptyObject(t *testing.T) {
	s := `{"type":"struct","fields":[{"name":"a","type":"integer","nullable":true}]}`
	st, err := ParseSchemaString(s)
	require.NoError(t, err)
	f, ok := st.FieldByName("a")
	require.True(t, ok)
	assert.JSONEq(t, "{}", string(f.Metadata))
}
