package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is a JSON Schema fragment. Only the subset needed to describe tool
// arguments is modelled: object/array/primitive types, property lists,
// required fields, and enums.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Description          string             `json:"description,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
}

// GenerateJSONSchema builds a schema for type T. Pointers are unwrapped to
// their element type; unexported and json:"-" fields are skipped.
func GenerateJSONSchema[T any]() *Schema {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return schemaFor(t)
}

func schemaFor(t reflect.Type) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: schemaFor(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: schemaFor(t.Elem())}
	case reflect.Ptr:
		return schemaFor(t.Elem())
	case reflect.Struct:
		return structSchema(t)
	default:
		return &Schema{Type: "object"}
	}
}

func structSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       "object",
		Properties: map[string]*Schema{},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		isOmitEmpty := false
		if jsonTag != "" {
			name, rest, hasOptions := strings.Cut(jsonTag, ",")
			if name != "" {
				fieldName = name
			}
			isOmitEmpty = hasOptions && strings.Contains(rest, "omitempty")
		}

		fieldSchema := schemaFor(field.Type)
		requiredByTag := applySchemaTag(field.Type, field.Tag, fieldSchema)

		schema.Properties[fieldName] = fieldSchema

		// A value-typed field without omitempty is required, as is any field
		// tagged `jsonschema:"required"` explicitly.
		if (field.Type.Kind() != reflect.Ptr && !isOmitEmpty) || requiredByTag {
			schema.Required = append(schema.Required, fieldName)
		}
	}

	return schema
}

// applySchemaTag applies the field's `jsonschema` struct tag (description,
// typed enum values, required marker) to schema and reports whether the tag
// marked the field required. Unparseable enum values are skipped.
func applySchemaTag(fieldType reflect.Type, tag reflect.StructTag, schema *Schema) bool {
	schemaTag := tag.Get("jsonschema")
	if schemaTag == "" {
		return false
	}

	required := false
	for _, item := range strings.Split(schemaTag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		switch {
		case key == "required" && !hasValue:
			required = true
		case key == "description" && hasValue:
			schema.Description = value
		case key == "enum" && hasValue:
			if enumValue, ok := typedEnumValue(fieldType, value); ok {
				schema.Enum = append(schema.Enum, enumValue)
			}
		}
	}

	return required
}

// typedEnumValue converts a tag-supplied enum literal to the field's type so
// the emitted schema carries properly typed values, not bare strings.
func typedEnumValue(fieldType reflect.Type, value string) (any, bool) {
	switch fieldType.Kind() {
	case reflect.String:
		return value, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseInt(value, 10, 64)
		return parsed, err == nil
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(value, 64)
		return parsed, err == nil
	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		return parsed, err == nil
	default:
		return nil, false
	}
}

// JsonString renders the schema as JSON, optionally indented.
func (s *Schema) JsonString(indent ...bool) (string, error) {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(s, "", "  ")
	} else {
		encoded, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(encoded), nil
}

// String returns the compact JSON rendering, or an error message if
// marshalling fails.
func (s *Schema) String() string {
	rendered, err := s.JsonString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return rendered
}
