package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecimalType_ValidateBounds(t *testing.T) {
	assert.NoError(t, DecimalType{Precision: 1, Scale: 0}.Validate())
	assert.NoError(t, DecimalType{Precision: 38, Scale: 38}.Validate())
	assert.Error(t, DecimalType{Precision: 0, Scale: 0}.Validate())
	assert.Error(t, DecimalType{Precision: 39, Scale: 0}.Validate())
	assert.Error(t, DecimalType{Precision: 10, Scale: 11}.Validate())
}

func TestStructType_FieldByName(t *testing.T) {
	st := StructType{Fields: []Field{
		{Name: "id", Type: Long},
		{Name: "name", Type: String},
	}}

	f, ok := st.FieldByName("name")
	assert.True(t, ok)
	assert.Equal(t, String, f.Type)

	_, ok = st.FieldByName("missing")
	assert.False(t, ok)
}

func TestStructType_ValidateCatchesNestedDecimal(t *testing.T) {
	st := StructType{Fields: []Field{
		{Name: "amount", Type: ArrayType{Element: DecimalType{Precision: 40, Scale: 0}}},
	}}
	assert.Error(t, st.Validate())
}

func TestIsValidPrimitive(t *testing.T) {
	assert.True(t, IsValidPrimitive("boolean"))
	assert.False(t, IsValidPrimitive("decimal"))
	assert.False(t, IsValidPrimitive("nonsense"))
}
