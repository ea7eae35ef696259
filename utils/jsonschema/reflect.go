package jsonschema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Schema is the subset of json schema emitted for connector and writer configs
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Format               string             `json:"format,omitempty"`
	Default              any                `json:"default,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Order                *int               `json:"order,omitempty"`
	Secret               bool               `json:"secret,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
}

var timeType = reflect.TypeOf(time.Time{})

// Reflect builds a schema from the exported fields of a config struct.
//
// Field names come from the json tag. A `validate` tag containing "required"
// marks the field required. The optional tags `title`, `description`, `default`,
// `enum` (comma separated), `order` and `secret` decorate the property.
func Reflect(v any) (*Schema, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot reflect schema of nil value")
	}

	return reflectType(reflect.TypeOf(v), map[reflect.Type]bool{})
}

func reflectType(t reflect.Type, seen map[reflect.Type]bool) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == timeType {
		return &Schema{Type: "string", Format: "date-time"}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Slice, reflect.Array:
		items, err := reflectType(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		values, err := reflectType(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Interface:
		return &Schema{}, nil
	case reflect.Struct:
		if seen[t] {
			return nil, fmt.Errorf("recursive type %s is not supported", t)
		}
		seen[t] = true
		defer delete(seen, t)

		return reflectStruct(t, seen)
	default:
		return nil, fmt.Errorf("unsupported kind %s for schema reflection", t.Kind())
	}
}

func reflectStruct(t reflect.Type, seen map[reflect.Type]bool) (*Schema, error) {
	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, skip := jsonName(field)
		if skip {
			continue
		}

		property, err := reflectType(field.Type, seen)
		if err != nil {
			return nil, fmt.Errorf("field %s: %s", field.Name, err)
		}

		if err := decorate(property, field); err != nil {
			return nil, fmt.Errorf("field %s: %s", field.Name, err)
		}

		schema.Properties[name] = property
		if strings.Contains(field.Tag.Get("validate"), "required") {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema, nil
}

func jsonName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}

	name := strings.Split(tag, ",")[0]
	if name == "" {
		name = field.Name
	}

	return name, false
}

func decorate(property *Schema, field reflect.StructField) error {
	property.Title = field.Tag.Get("title")
	property.Description = field.Tag.Get("description")
	property.Secret = field.Tag.Get("secret") == "true"

	if order := field.Tag.Get("order"); order != "" {
		value, err := strconv.Atoi(order)
		if err != nil {
			return fmt.Errorf("invalid order tag[%s]: %s", order, err)
		}
		property.Order = &value
	}

	if enum := field.Tag.Get("enum"); enum != "" {
		for _, option := range strings.Split(enum, ",") {
			property.Enum = append(property.Enum, option)
		}
	}

	if def, found := field.Tag.Lookup("default"); found {
		value, err := parseDefault(property.Type, def)
		if err != nil {
			return err
		}
		property.Default = value
	}

	return nil
}

func parseDefault(typ, raw string) (any, error) {
	switch typ {
	case "integer":
		return strconv.ParseInt(raw, 10, 64)
	case "number":
		return strconv.ParseFloat(raw, 64)
	case "boolean":
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}
