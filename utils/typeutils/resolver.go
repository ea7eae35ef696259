package typeutils

import "github.com/datazip-inc/olake-ticketmatic/types"

// Resolve infers column types from sampled records and upserts them into the
// stream schema. Columns missing from any sampled record are nullable.
func Resolve(stream *types.Stream, objects ...map[string]interface{}) error {
	allfields := Fields{}

	for idx, object := range objects {
		fields := Fields{}
		for k, v := range object {
			fields[k] = NewField(v)
		}

		for fieldName, field := range allfields {
			if _, found := object[fieldName]; !found {
				field.setNullable()
			}
		}

		// columns first seen after the first record were absent before it
		if idx > 0 {
			for fieldName, field := range fields {
				if _, found := allfields[fieldName]; !found {
					field.setNullable()
				}
			}
		}

		allfields.Merge(fields)
	}

	for column, field := range allfields {
		typ := field.getType()
		if typ == types.Null {
			// only nulls were sampled, keep the value as json text
			typ = types.Unknown
		}
		stream.UpsertField(column, typ, field.isNullable())
	}

	return nil
}
