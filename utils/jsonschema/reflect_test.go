package jsonschema

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	Bucket string `json:"bucket" validate:"required"`
}

type sample struct {
	Account  string            `json:"accountname" validate:"required" order:"1" title:"Account"`
	Secret   string            `json:"api_secret" validate:"required" order:"3" secret:"true"`
	Key      string            `json:"api_key" validate:"required" order:"2"`
	PageSize int               `json:"page_size" default:"1000"`
	Policy   string            `json:"pagination_policy" enum:"total_count,empty_page"`
	Streams  []string          `json:"streams"`
	Labels   map[string]string `json:"labels"`
	Upload   *nested           `json:"upload,omitempty"`
	Ignored  string            `json:"-"`
	internal string
}

func TestReflect(t *testing.T) {
	schema, err := Reflect(sample{})
	require.NoError(t, err)

	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"accountname", "api_secret", "api_key"}, schema.Required)
	assert.NotContains(t, schema.Properties, "Ignored")
	assert.NotContains(t, schema.Properties, "internal")

	assert.Equal(t, int64(1000), schema.Properties["page_size"].Default)
	assert.Equal(t, []any{"total_count", "empty_page"}, schema.Properties["pagination_policy"].Enum)
	assert.True(t, schema.Properties["api_secret"].Secret)
	assert.Equal(t, "array", schema.Properties["streams"].Type)
	assert.Equal(t, "string", schema.Properties["streams"].Items.Type)
	assert.Equal(t, "object", schema.Properties["labels"].Type)
	assert.Equal(t, []string{"bucket"}, schema.Properties["upload"].Required)
}

func TestReflectRejectsNil(t *testing.T) {
	_, err := Reflect(nil)
	assert.Error(t, err)
}

func TestOrderedProperties(t *testing.T) {
	schema, err := Reflect(sample{})
	require.NoError(t, err)

	ordered, err := Ordered(schema)
	require.NoError(t, err)

	raw, err := json.Marshal(ordered["properties"])
	require.NoError(t, err)

	order := []string{
		"accountname", "api_key", "api_secret",
		"labels", "page_size", "pagination_policy", "streams", "upload",
	}
	last := -1
	for _, key := range order {
		idx := strings.Index(string(raw), `"`+key+`":`)
		require.Greater(t, idx, last, "property %s out of order", key)
		last = idx
	}
}
