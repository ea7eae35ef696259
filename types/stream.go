package types

import (
	"fmt"

	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/goccy/go-json"
)

// Output Stream Object for dsynk
type Stream struct {
	// Name of the Stream
	Name string `json:"name,omitempty"`
	// Namespace of the Stream, or Database it belongs to
	// helps in identifying collections with same name in different database
	Namespace string `json:"namespace,omitempty"`
	// Possible Schema of the Stream
	Schema *TypeSchema `json:"type_schema,omitempty"`
	// Supported sync modes from driver for the respective Stream
	SupportedSyncModes *Set[SyncMode] `json:"supported_sync_modes,omitempty"`
	// Primary key if available
	SourceDefinedPrimaryKey *Set[string] `json:"source_defined_primary_key,omitempty"`
	// Available cursor fields supported by driver
	AvailableCursorFields *Set[string] `json:"available_cursor_fields,omitempty"`
	// Input of JSON Schema from Client to be parsed by driver
	AdditionalProperties string `json:"additional_properties,omitempty"`
	// Cursor field to be used for incremental sync
	CursorField string `json:"cursor_field,omitempty"`
	// Mode being used for syncing data
	SyncMode SyncMode `json:"sync_mode,omitempty"`
}

func NewStream(name, namespace string) *Stream {
	return &Stream{
		Name:                    name,
		Namespace:               namespace,
		SupportedSyncModes:      NewSet[SyncMode](),
		SourceDefinedPrimaryKey: NewSet[string](),
		AvailableCursorFields:   NewSet[string](),
		Schema:                  NewTypeSchema(),
	}
}

func (s *Stream) ID() string {
	return fmt.Sprintf("%s.%s", s.Namespace, s.Name)
}

func (s *Stream) WithSyncMode(modes ...SyncMode) *Stream {
	for _, mode := range modes {
		s.SupportedSyncModes.Insert(mode)
	}

	return s
}

func (s *Stream) WithPrimaryKey(keys ...string) *Stream {
	for _, key := range keys {
		s.SourceDefinedPrimaryKey.Insert(key)
	}

	return s
}

func (s *Stream) WithCursorField(columns ...string) *Stream {
	for _, column := range columns {
		s.AvailableCursorFields.Insert(column)
	}

	return s
}

// UpsertField adds a column to the schema, marking it nullable when asked
func (s *Stream) UpsertField(column string, typ DataType, nullable bool) {
	if s.Schema == nil {
		s.Schema = NewTypeSchema()
	}

	types := []DataType{typ}
	if nullable {
		types = append(types, Null)
	}

	s.Schema.AddTypes(column, types...)
}

// Wrap converts a discovered stream into a configured one
func (s *Stream) Wrap() *ConfiguredStream {
	return &ConfiguredStream{
		Stream: s,
		StreamMetadata: StreamMetadata{
			StreamName: s.Name,
		},
	}
}

func (s *Stream) UnmarshalJSON(data []byte) error {
	// Define a type alias to avoid recursion
	type Alias Stream

	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	// Initialize sets when absent from the payload
	if s.SupportedSyncModes == nil {
		s.SupportedSyncModes = NewSet[SyncMode]()
	}
	if s.SourceDefinedPrimaryKey == nil {
		s.SourceDefinedPrimaryKey = NewSet[string]()
	}
	if s.AvailableCursorFields == nil {
		s.AvailableCursorFields = NewSet[string]()
	}
	if s.Schema == nil {
		s.Schema = NewTypeSchema()
	}

	return nil
}

func StreamsToMap(streams ...*Stream) map[string]*Stream {
	output := make(map[string]*Stream)
	for _, stream := range streams {
		output[stream.ID()] = stream
	}

	return output
}

// LogCatalog writes the discovered streams to the streams file and stdout
func LogCatalog(streams []*Stream) {
	message := Message{
		Type:    CatalogMessage,
		Catalog: GetWrappedCatalog(streams),
	}
	logger.Info(message)

	if err := logger.FileLogger(message.Catalog, "streams", ".json"); err != nil {
		logger.Fatalf("failed to create streams file: %s", err)
	}
}
