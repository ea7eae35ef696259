package typeutils

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Compare orders two values of the same kind: -1 when a < b, 0 when equal, 1
// when a > b. nil sorts first. Mixed or unknown kinds compare by their string form.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch aVal := a.(type) {
	case int, int8, int16, int32, int64:
		if !isInteger(b) {
			break
		}
		return cmp.Compare(
			reflect.ValueOf(a).Convert(reflect.TypeFor[int64]()).Int(),
			reflect.ValueOf(b).Convert(reflect.TypeFor[int64]()).Int(),
		)
	case float32, float64:
		bFloat, ok := toFloat(b)
		if !ok {
			break
		}
		aFloat := reflect.ValueOf(a).Convert(reflect.TypeFor[float64]()).Float()
		// NaN sorts before every number
		if !math.IsNaN(aFloat) && !math.IsNaN(bFloat) && math.Abs(aFloat-bFloat) < floatEpsilon {
			return 0
		}
		return cmp.Compare(aFloat, bFloat)
	case time.Time:
		if bTime, ok := b.(time.Time); ok {
			return aVal.Compare(bTime)
		}
	case Time:
		if bTime, ok := b.(Time); ok {
			return aVal.Compare(bTime)
		}
	case bool:
		if bBool, ok := b.(bool); ok {
			return cmp.Compare(btoi(aVal), btoi(bBool))
		}
	}

	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

const floatEpsilon = 1e-6

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64:
		return true
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return isInteger(v)
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		if !isNumber(v) {
			return 0, false
		}
		return reflect.ValueOf(v).Convert(reflect.TypeFor[float64]()).Float(), true
	}
}

// CompareCursor orders replication key values. Numbers compare numerically and
// timestamps written in different layouts compare as instants; anything else
// falls back to Compare.
func CompareCursor(a, b any) int {
	if a == nil || b == nil {
		return Compare(a, b)
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return Compare(af, bf)
		}
	}

	at, aErr := asTime(a)
	bt, bErr := asTime(b)
	if aErr == nil && bErr == nil {
		return Compare(at, bt)
	}

	return Compare(a, b)
}

type cursorKind int

const (
	otherCursor cursorKind = iota
	numberCursor
	timestampCursor
)

func kindOf(v any) cursorKind {
	if _, ok := toFloat(v); ok {
		return numberCursor
	}
	if _, err := asTime(v); err == nil {
		return timestampCursor
	}
	return otherCursor
}

// SameCursorKind reports whether CompareCursor orders a and b by value: both
// numbers, both timestamps, or neither
func SameCursorKind(a, b any) bool {
	return kindOf(a) == kindOf(b)
}

func asTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case Time:
		return val.Time, nil
	case string:
		return parseStringTimestamp(val)
	default:
		return time.Time{}, fmt.Errorf("value[%v] of type %T is not a timestamp", v, v)
	}
}
