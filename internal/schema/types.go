// Package schema implements the table's typed data-type tree (spec §3, §4.1):
// primitives, decimal, array, map and struct, plus the JSON codec that
// parses and emits the schema string carried on a metadata action.
package schema

import (
	"encoding/json"
	"fmt"
)

// DataType is the algebraic type of a column or nested field. It is
// implemented by PrimitiveType, DecimalType, ArrayType, MapType and
// StructType — one concrete type per variant, matching this codebase's
// preference for named structs over a single stringly-typed blob.
type DataType interface {
	dataType()
	// String returns the type's wire tag ("boolean", "decimal(10,2)",
	// "array", "map", "struct").
	String() string
}

// PrimitiveType is one of the fixed-width or string/binary/date/timestamp
// primitives from spec §4.1.
type PrimitiveType string

const (
	Boolean   PrimitiveType = "boolean"
	Byte      PrimitiveType = "byte"
	Short     PrimitiveType = "short"
	Integer   PrimitiveType = "integer"
	Long      PrimitiveType = "long"
	Float     PrimitiveType = "float"
	Double    PrimitiveType = "double"
	String    PrimitiveType = "string"
	Binary    PrimitiveType = "binary"
	Date      PrimitiveType = "date"
	Timestamp PrimitiveType = "timestamp"
)

func (PrimitiveType) dataType() {}
func (p PrimitiveType) String() string {
	return string(p)
}

// IsValidPrimitive reports whether s is one of the tagged primitive strings
// spec §4.1 recognizes.
func IsValidPrimitive(s string) bool {
	switch PrimitiveType(s) {
	case Boolean, Byte, Short, Integer, Long, Float, Double, String, Binary, Date, Timestamp:
		return true
	default:
		return false
	}
}

// DecimalType is a fixed-point number with precision ∈ [1,38] and
// scale ∈ [0, precision].
type DecimalType struct {
	Precision int
	Scale     int
}

func (DecimalType) dataType() {}
func (d DecimalType) String() string {
	return fmt.Sprintf("decimal(%d,%d)", d.Precision, d.Scale)
}

// Validate enforces the decimal bounds from spec §3.
func (d DecimalType) Validate() error {
	if d.Precision < 1 || d.Precision > 38 {
		return fmt.Errorf("decimal precision %d out of range [1,38]", d.Precision)
	}
	if d.Scale < 0 || d.Scale > d.Precision {
		return fmt.Errorf("decimal scale %d out of range [0,%d]", d.Scale, d.Precision)
	}
	return nil
}

// ArrayType is a homogeneous list of Element, whose entries may be null
// when ContainsNull is set.
type ArrayType struct {
	Element      DataType
	ContainsNull bool
}

func (ArrayType) dataType() {}
func (ArrayType) String() string { return "array" }

// MapType is a homogeneous dictionary from Key to Value, whose values may
// be null when ValueContainsNull is set.
type MapType struct {
	Key                DataType
	Value              DataType
	ValueContainsNull bool
}

func (MapType) dataType() {}
func (MapType) String() string { return "map" }

// Field is one named member of a StructType.
type Field struct {
	Name     string
	Type     DataType
	Nullable bool
	// Metadata is kept as opaque JSON so arbitrary caller metadata
	// round-trips as the same JSON value (emit compacts its whitespace), the
	// same pass-through discipline this module applies to commitInfo's
	// operationParameters (§4.2).
	Metadata json.RawMessage
}

// StructType is an ordered, named tuple of Fields. Field names must be
// unique within one struct (spec §3 invariant).
type StructType struct {
	Fields []Field
}

func (StructType) dataType() {}
func (StructType) String() string { return "struct" }

// Validate checks the struct-level invariants: unique field names, and that
// every nested DataType (decimal precision/scale, nested structs) is
// itself valid.
func (s StructType) Validate() error {
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate struct field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if err := validateType(f.Type); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

func validateType(t DataType) error {
	switch v := t.(type) {
	case DecimalType:
		return v.Validate()
	case ArrayType:
		return validateType(v.Element)
	case MapType:
		if err := validateType(v.Key); err != nil {
			return err
		}
		return validateType(v.Value)
	case StructType:
		return v.Validate()
	default:
		return nil
	}
}

// FieldByName returns the named field and true, or the zero Field and
// false if no such field exists.
func (s StructType) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
