package types

import (
	"time"

	"github.com/parquet-go/parquet-go"
)

type DataType string

const (
	Null           DataType = "null"
	Int64          DataType = "integer"
	Float64        DataType = "number"
	String         DataType = "string"
	Bool           DataType = "boolean"
	Object         DataType = "object"
	Array          DataType = "array"
	Unknown        DataType = "unknown"
	Timestamp      DataType = "timestamp"
	TimestampMicro DataType = "timestamp_micro" // storing datetime upto 6 precisions
)

// RawRecord is a record as produced by a driver, tagged with system columns
type RawRecord struct {
	Data           map[string]any `json:"data"`
	OlakeID        string         `json:"_olake_id"`
	OlakeTimestamp time.Time      `json:"_olake_timestamp"`
	OperationType  string         `json:"_op_type"` // "r" for full refresh, "u" for incremental
}

func CreateRawRecord(olakeID string, data map[string]any, operationType string, olakeTimestamp time.Time) RawRecord {
	return RawRecord{
		Data:           data,
		OlakeID:        olakeID,
		OlakeTimestamp: olakeTimestamp,
		OperationType:  operationType,
	}
}

// ToNewParquet returns the parquet-go node used to store values of the datatype
func (d DataType) ToNewParquet() parquet.Node {
	var node parquet.Node
	switch d {
	case Int64:
		node = parquet.Int(64)
	case Float64:
		node = parquet.Leaf(parquet.DoubleType)
	case String:
		node = parquet.String()
	case Bool:
		node = parquet.Leaf(parquet.BooleanType)
	case Timestamp, TimestampMicro:
		node = parquet.Timestamp(parquet.Microsecond)
	default:
		// objects, arrays and variant shaped values are kept as json text
		node = parquet.JSON()
	}

	return parquet.Optional(node)
}

// NeedsStringification reports whether values are written as JSON text
func (d DataType) NeedsStringification() bool {
	switch d {
	case Int64, Float64, Bool, String, Timestamp, TimestampMicro:
		return false
	default:
		return true
	}
}
