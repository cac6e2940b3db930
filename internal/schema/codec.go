package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"tablelog/internal/common"
)

var decimalPattern = regexp.MustCompile(`^decimal\((\d+),(\d+)\)$`)

// ParseType parses a schema JSON value — either a tagged string
// ("boolean", "decimal(10,2)") or an object ({"type":"array",...}) — into a
// DataType. It is total over every tree emit can produce (spec §8 property
// 3: parseSchema(emitSchema(s)) == s).
func ParseType(raw json.RawMessage) (DataType, error) {
	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		return parsePrimitiveOrDecimal(tag)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, common.ErrInvalidSchemaf("malformed schema node: %v", err)
	}

	switch head.Type {
	case "array":
		var node struct {
			ElementType  json.RawMessage `json:"elementType"`
			ContainsNull bool            `json:"containsNull"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, common.ErrInvalidSchemaf("malformed array node: %v", err)
		}
		elem, err := ParseType(node.ElementType)
		if err != nil {
			return nil, err
		}
		return ArrayType{Element: elem, ContainsNull: node.ContainsNull}, nil

	case "map":
		var node struct {
			KeyType           json.RawMessage `json:"keyType"`
			ValueType         json.RawMessage `json:"valueType"`
			ValueContainsNull bool            `json:"valueContainsNull"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, common.ErrInvalidSchemaf("malformed map node: %v", err)
		}
		key, err := ParseType(node.KeyType)
		if err != nil {
			return nil, err
		}
		val, err := ParseType(node.ValueType)
		if err != nil {
			return nil, err
		}
		return MapType{Key: key, Value: val, ValueContainsNull: node.ValueContainsNull}, nil

	case "struct":
		var node struct {
			Fields []rawField `json:"fields"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, common.ErrInvalidSchemaf("malformed struct node: %v", err)
		}
		fields := make([]Field, 0, len(node.Fields))
		for _, rf := range node.Fields {
			f, err := rf.toField()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		st := StructType{Fields: fields}
		if err := st.Validate(); err != nil {
			return nil, common.ErrInvalidSchemaf("%v", err)
		}
		return st, nil

	case "":
		return nil, common.ErrInvalidSchemaf("schema node missing \"type\"")
	default:
		return nil, common.ErrInvalidSchemaf("unknown schema type tag %q", head.Type)
	}
}

// rawField mirrors the wire shape of a struct field so json.RawMessage can
// defer parsing the nested type.
type rawField struct {
	Name     string          `json:"name"`
	Type     json.RawMessage `json:"type"`
	Nullable bool            `json:"nullable"`
	Metadata json.RawMessage `json:"metadata"`
}

func (rf rawField) toField() (Field, error) {
	if rf.Name == "" {
		return Field{}, common.ErrInvalidSchemaf("struct field missing \"name\"")
	}
	t, err := ParseType(rf.Type)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", rf.Name, err)
	}
	meta := rf.Metadata
	if meta == nil {
		meta = json.RawMessage("{}")
	}
	return Field{Name: rf.Name, Type: t, Nullable: rf.Nullable, Metadata: meta}, nil
}

func parsePrimitiveOrDecimal(tag string) (DataType, error) {
	if tag == "decimal" {
		return DecimalType{Precision: 10, Scale: 0}, nil
	}
	if m := decimalPattern.FindStringSubmatch(tag); m != nil {
		precision, _ := strconv.Atoi(m[1])
		scale, _ := strconv.Atoi(m[2])
		d := DecimalType{Precision: precision, Scale: scale}
		if err := d.Validate(); err != nil {
			return nil, common.ErrInvalidSchemaf("%v", err)
		}
		return d, nil
	}
	if IsValidPrimitive(tag) {
		return PrimitiveType(tag), nil
	}
	return nil, common.ErrInvalidSchemaf("unknown primitive type tag %q", tag)
}

// EmitType serializes a DataType back to its wire form, the inverse of
// ParseType.
func EmitType(t DataType) (json.RawMessage, error) {
	switch v := t.(type) {
	case PrimitiveType:
		return json.Marshal(v.String())
	case DecimalType:
		if err := v.Validate(); err != nil {
			return nil, common.ErrInvalidSchemaf("%v", err)
		}
		return json.Marshal(v.String())
	case ArrayType:
		elem, err := EmitType(v.Element)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Type         string          `json:"type"`
			ElementType  json.RawMessage `json:"elementType"`
			ContainsNull bool            `json:"containsNull"`
		}{"array", elem, v.ContainsNull})
	case MapType:
		key, err := EmitType(v.Key)
		if err != nil {
			return nil, err
		}
		val, err := EmitType(v.Value)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Type              string          `json:"type"`
			KeyType           json.RawMessage `json:"keyType"`
			ValueType         json.RawMessage `json:"valueType"`
			ValueContainsNull bool            `json:"valueContainsNull"`
		}{"map", key, val, v.ValueContainsNull})
	case StructType:
		if err := v.Validate(); err != nil {
			return nil, common.ErrInvalidSchemaf("%v", err)
		}
		fields := make([]json.RawMessage, 0, len(v.Fields))
		for _, f := range v.Fields {
			ft, err := EmitType(f.Type)
			if err != nil {
				return nil, err
			}
			meta := f.Metadata
			if meta == nil {
				meta = json.RawMessage("{}")
			}
			raw, err := json.Marshal(struct {
				Name     string          `json:"name"`
				Type     json.RawMessage `json:"type"`
				Nullable bool            `json:"nullable"`
				Metadata json.RawMessage `json:"metadata"`
			}{f.Name, ft, f.Nullable, meta})
			if err != nil {
				return nil, err
			}
			fields = append(fields, raw)
		}
		return json.Marshal(struct {
			Type   string            `json:"type"`
			Fields []json.RawMessage `json:"fields"`
		}{"struct", fields})
	default:
		return nil, common.ErrUnsupportedTypef("cannot emit unknown DataType %T", t)
	}
}

// ParseSchemaString parses the schemaString carried on a metadata action
// into a StructType, rejecting any top-level shape other than "struct".
func ParseSchemaString(s string) (StructType, error) {
	dt, err := ParseType(json.RawMessage(s))
	if err != nil {
		return StructType{}, err
	}
	st, ok := dt.(StructType)
	if !ok {
		return StructType{}, common.ErrInvalidSchemaf("schema root must be a struct, got %s", dt.String())
	}
	return st, nil
}

// EmitSchemaString is the inverse of ParseSchemaString.
func EmitSchemaString(s StructType) (string, error) {
	raw, err := EmitType(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
