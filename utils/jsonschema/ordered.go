package jsonschema

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// OrderedProperties marshals a properties object with its keys in Order
type OrderedProperties struct {
	Properties map[string]interface{}
	Order      []string
}

func (op OrderedProperties) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{")
	for idx, key := range op.Order {
		if idx > 0 {
			b.WriteString(",")
		}

		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal property key %s: %w", key, err)
		}
		b.Write(keyBytes)
		b.WriteString(":")

		valBytes, err := json.Marshal(op.Properties[key])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal property value for key %s: %w", key, err)
		}
		b.Write(valBytes)
	}
	b.WriteString("}")
	return b.Bytes(), nil
}

type propertyEntry struct {
	Key   string
	Value interface{}
	Order int // -1 when the property carries no order
}

// Ordered converts schema to a generic map whose properties marshal by their
// order tag first and alphabetically after that.
func Ordered(schema *Schema) (map[string]interface{}, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %s", err)
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to generic map: %s", err)
	}

	sortSchemaProperties(generic)
	return generic, nil
}

func sortSchemaProperties(schemaMap map[string]interface{}) {
	if propertiesMap, ok := schemaMap["properties"].(map[string]interface{}); ok {
		entries := make([]propertyEntry, 0, len(propertiesMap))
		for key, val := range propertiesMap {
			order := -1
			if propVal, isMap := val.(map[string]interface{}); isMap {
				if floatOrder, ok := propVal["order"].(float64); ok {
					order = int(floatOrder)
				}
			}
			entries = append(entries, propertyEntry{Key: key, Value: val, Order: order})
		}

		sort.Slice(entries, func(i, j int) bool {
			if (entries[i].Order == -1) != (entries[j].Order == -1) {
				return entries[i].Order != -1
			}
			if entries[i].Order != entries[j].Order {
				return entries[i].Order < entries[j].Order
			}
			return entries[i].Key < entries[j].Key
		})

		ordered := OrderedProperties{Properties: map[string]interface{}{}}
		for _, entry := range entries {
			if nested, isMap := entry.Value.(map[string]interface{}); isMap {
				sortSchemaProperties(nested)
			}
			ordered.Properties[entry.Key] = entry.Value
			ordered.Order = append(ordered.Order, entry.Key)
		}
		schemaMap["properties"] = ordered
	}

	if items, ok := schemaMap["items"].(map[string]interface{}); ok {
		sortSchemaProperties(items)
	}
	if values, ok := schemaMap["additionalProperties"].(map[string]interface{}); ok {
		sortSchemaProperties(values)
	}
}
