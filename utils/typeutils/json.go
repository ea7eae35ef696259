package typeutils

import (
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/datazip-inc/olake-ticketmatic/types"
)

const (
	maxInt64 = int64(1<<63 - 1)
	minInt64 = int64(-1 << 63)
)

// JSONTypeTrack records which json kinds were observed for a single field
type JSONTypeTrack struct {
	String    bool
	Boolean   bool
	Int64     bool
	Float64   bool
	Timestamp bool
	Object    bool
	Array     bool
}

func DetectJSONType(v interface{}, stats *JSONTypeTrack) {
	switch val := v.(type) {
	case nil:
		return
	case bool:
		stats.Boolean = true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		stats.Int64 = true
	case json.Number:
		if _, err := val.Int64(); err == nil {
			stats.Int64 = true
		} else {
			stats.Float64 = true
		}
	case float32:
		DetectJSONType(float64(val), stats)
	case float64: // JSON numbers always decode as float64
		if math.IsNaN(val) || math.IsInf(val, 0) {
			stats.Float64 = true
			return
		}

		if val == math.Trunc(val) && val >= float64(minInt64) && val <= float64(maxInt64) {
			stats.Int64 = true
		} else {
			stats.Float64 = true
		}
	case string:
		if isTimestampString(val) {
			stats.Timestamp = true
		} else {
			stats.String = true
		}
	case time.Time:
		stats.Timestamp = true
	case map[string]interface{}:
		stats.Object = true
	case []interface{}:
		stats.Array = true
	default:
		stats.String = true
	}
}

// InferJSONType collapses the observed kinds into one datatype. Integers seen
// alongside decimals widen to number; any other mix is reported as Unknown and
// stored as json text downstream.
func InferJSONType(valType JSONTypeTrack) types.DataType {
	if valType.Int64 && valType.Float64 {
		valType.Int64 = false
	}

	observed := []struct {
		seen bool
		typ  types.DataType
	}{
		{valType.Boolean, types.Bool},
		{valType.Int64, types.Int64},
		{valType.Float64, types.Float64},
		{valType.Timestamp, types.Timestamp},
		{valType.String, types.String},
		{valType.Object, types.Object},
		{valType.Array, types.Array},
	}

	result := types.Null
	for _, o := range observed {
		if !o.seen {
			continue
		}
		if result != types.Null {
			return types.Unknown
		}
		result = o.typ
	}

	return result
}

// if string is in timestamp format
func isTimestampString(s string) bool {
	_, err := parseStringTimestamp(s)
	return err == nil
}
