package typeutils

import "github.com/datazip-inc/olake-ticketmatic/types"

// Field accumulates what has been observed for one column across sampled records
type Field struct {
	track    JSONTypeTrack
	nullable bool
}

func NewField(value any) *Field {
	f := &Field{}
	f.observe(value)
	return f
}

func (f *Field) observe(value any) {
	if value == nil {
		f.nullable = true
		return
	}
	DetectJSONType(value, &f.track)
}

func (f *Field) setNullable() {
	f.nullable = true
}

func (f *Field) isNullable() bool {
	return f.nullable || f.getType() == types.Null
}

func (f *Field) getType() types.DataType {
	return InferJSONType(f.track)
}

type Fields map[string]*Field

// Merge folds the observations of other into f
func (f Fields) Merge(other Fields) {
	for name, field := range other {
		existing, found := f[name]
		if !found {
			f[name] = field
			continue
		}

		existing.track = mergeTracks(existing.track, field.track)
		existing.nullable = existing.nullable || field.nullable
	}
}

func mergeTracks(a, b JSONTypeTrack) JSONTypeTrack {
	return JSONTypeTrack{
		String:    a.String || b.String,
		Boolean:   a.Boolean || b.Boolean,
		Int64:     a.Int64 || b.Int64,
		Float64:   a.Float64 || b.Float64,
		Timestamp: a.Timestamp || b.Timestamp,
		Object:    a.Object || b.Object,
		Array:     a.Array || b.Array,
	}
}
