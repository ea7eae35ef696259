package typeutils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/datazip-inc/olake-ticketmatic/types"
)

var ErrNullValue = errors.New("null value")

func getFirstNotNullType(datatypes []types.DataType) types.DataType {
	for _, datatype := range datatypes {
		if datatype != types.Null {
			return datatype
		}
	}

	return types.Null
}

// ReformatRecord converts every value of record to the go type used for its
// column in schema. Columns unknown to the schema are left untouched.
func ReformatRecord(schema *types.TypeSchema, record map[string]any) error {
	for key, val := range record {
		found, property := schema.GetProperty(key)
		if !found {
			continue
		}

		datatype := getFirstNotNullType(property.Type.Array())
		if datatype == types.Null {
			continue
		}

		reformatted, err := ReformatValue(datatype, val)
		if err != nil {
			return fmt.Errorf("failed to reformat column[%s]: %s", key, err)
		}
		record[key] = reformatted
	}

	return nil
}

func ReformatValue(dataType types.DataType, v any) (any, error) {
	if dataType == types.Null {
		return nil, ErrNullValue
	}
	if v == nil {
		return nil, nil
	}

	switch dataType {
	case types.Bool:
		return ReformatBool(v)
	case types.Int64:
		return ReformatInt64(v)
	case types.Float64:
		return ReformatFloat64(v)
	case types.String:
		return ReformatString(v)
	case types.Timestamp, types.TimestampMicro:
		return ReformatDate(v)
	default:
		return v, nil
	}
}

func ReformatBool(v any) (bool, error) {
	switch booleanValue := v.(type) {
	case bool:
		return booleanValue, nil
	case string:
		switch strings.ToLower(booleanValue) {
		case "1", "t", "true":
			return true, nil
		case "0", "f", "false":
			return false, nil
		}
	case int:
		return booleanValue != 0, nil
	case int64:
		return booleanValue != 0, nil
	case float64:
		return booleanValue != 0, nil
	}

	return false, fmt.Errorf("found to be boolean, but value is not boolean: %v", v)
}

func ReformatInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(math.Round(v)), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return int64(math.Round(f)), nil
	case string:
		intValue, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to change string %v to int64: %v", v, err)
		}
		return intValue, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("failed to change %v (type:%T) to int64", v, v)
}

func ReformatFloat64(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to change string %v to float64: %v", v, err)
		}
		return f, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("failed to change %v (type:%T) to float64", v, v)
}

func ReformatString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case map[string]any, []any:
		b, err := json.Marshal(v)
		return string(b), err
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// ReformatDate returns v as a UTC time, parsing strings in any of the accepted layouts
func ReformatDate(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, ErrNullValue
		}
		return v.UTC(), nil
	case Time:
		return v.UTC(), nil
	case string:
		return parseStringTimestamp(v)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("failed to parse datetime from available formats: %v (type:%T)", v, v)
}
