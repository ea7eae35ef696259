package typeutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/olake-ticketmatic/types"
)

func TestReformat_GetFirstNotNullType(t *testing.T) {
	tests := []struct {
		name   string
		input  []types.DataType
		output types.DataType
	}{
		{"single non-null type", []types.DataType{types.String}, types.String},
		{"first non-null type mixed array", []types.DataType{types.Null, types.Int64, types.String}, types.Int64},
		{"all null types", []types.DataType{types.Null, types.Null}, types.Null},
		{"empty array", []types.DataType{}, types.Null},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.output, getFirstNotNullType(tc.input))
		})
	}
}

func TestReformat_ReformatValue(t *testing.T) {
	tests := []struct {
		name      string
		datatype  types.DataType
		value     any
		output    any
		outputErr bool
	}{
		{name: "null type returns error", datatype: types.Null, value: "x", outputErr: true},
		{name: "nil value returns nil", datatype: types.String, value: nil, output: nil},
		{name: "bool from string", datatype: types.Bool, value: "true", output: true},
		{name: "bool from float", datatype: types.Bool, value: float64(0), output: false},
		{name: "int64 from json float", datatype: types.Int64, value: float64(42), output: int64(42)},
		{name: "int64 from string", datatype: types.Int64, value: "17", output: int64(17)},
		{name: "int64 from bad string", datatype: types.Int64, value: "abc", outputErr: true},
		{name: "float64 from int", datatype: types.Float64, value: 3, output: float64(3)},
		{name: "string from float", datatype: types.String, value: float64(12.5), output: "12.5"},
		{name: "string from object", datatype: types.String, value: map[string]any{"a": float64(1)}, output: `{"a":1}`},
		{
			name:     "timestamp from api layout",
			datatype: types.Timestamp,
			value:    "2023-04-05 06:07:08",
			output:   time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC),
		},
		{name: "timestamp from garbage", datatype: types.Timestamp, value: "not a date", outputErr: true},
		{name: "object left as is", datatype: types.Object, value: map[string]any{"k": "v"}, output: map[string]any{"k": "v"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReformatValue(tc.datatype, tc.value)
			if tc.outputErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.output, result)
		})
	}
}

func TestReformatRecord(t *testing.T) {
	stream := types.NewStream("orders", "ticketmatic")
	stream.UpsertField("orderid", types.Int64, false)
	stream.UpsertField("lastupdatets", types.Timestamp, true)

	record := map[string]any{
		"orderid":      float64(1001),
		"lastupdatets": "2023-01-02 03:04:05",
		"extra":        "kept",
	}

	require.NoError(t, ReformatRecord(stream.Schema, record))
	assert.Equal(t, int64(1001), record["orderid"])
	assert.Equal(t, time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), record["lastupdatets"])
	assert.Equal(t, "kept", record["extra"])
}

func TestResolve(t *testing.T) {
	stream := types.NewStream("events", "ticketmatic")
	err := Resolve(stream,
		map[string]any{"c_genre": "jazz", "c_capacity": float64(10), "c_meta": map[string]any{}},
		map[string]any{"c_genre": "rock", "c_capacity": float64(10.5), "c_flag": true},
		map[string]any{"c_genre": nil, "c_capacity": float64(3), "c_mixed": "x"},
	)
	require.NoError(t, err)

	typ, err := stream.Schema.GetType("c_capacity")
	require.NoError(t, err)
	assert.Equal(t, types.Float64, typ)

	_, genre := stream.Schema.GetProperty("c_genre")
	require.NotNil(t, genre)
	assert.Equal(t, types.String, genre.DataType())
	assert.True(t, genre.Nullable())

	_, flag := stream.Schema.GetProperty("c_flag")
	require.NotNil(t, flag)
	assert.True(t, flag.Nullable())

	_, meta := stream.Schema.GetProperty("c_meta")
	require.NotNil(t, meta)
	assert.Equal(t, types.Object, meta.DataType())
	assert.True(t, meta.Nullable())
}

func TestInferJSONType(t *testing.T) {
	assert.Equal(t, types.Null, InferJSONType(JSONTypeTrack{}))
	assert.Equal(t, types.Float64, InferJSONType(JSONTypeTrack{Int64: true, Float64: true}))
	assert.Equal(t, types.Unknown, InferJSONType(JSONTypeTrack{String: true, Boolean: true}))
	assert.Equal(t, types.Timestamp, InferJSONType(JSONTypeTrack{Timestamp: true}))
}
