package singer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

// Message is a single line of the Singer message stream
type Message struct {
	Type               types.MessageType `json:"type"`
	Stream             string            `json:"stream,omitempty"`
	Record             map[string]any    `json:"record,omitempty"`
	TimeExtracted      *time.Time        `json:"time_extracted,omitempty"`
	Schema             map[string]any    `json:"schema,omitempty"`
	KeyProperties      []string          `json:"key_properties,omitempty"`
	BookmarkProperties []string          `json:"bookmark_properties,omitempty"`
	Value              any               `json:"value,omitempty"`
}

// sink serializes lines from every writer thread sharing one output
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *sink) emit(messages ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, message := range messages {
		line, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal %s message: %s", message.Type, err)
		}
		if _, err := s.out.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write %s message: %s", message.Type, err)
		}
	}

	return nil
}

var (
	sinksMu sync.Mutex
	sinks   = map[string]*sink{}
)

func openSink(path string) (*sink, error) {
	sinksMu.Lock()
	defer sinksMu.Unlock()

	if s, found := sinks[path]; found {
		return s, nil
	}

	var out io.Writer = os.Stdout
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory for output[%s]: %s", path, err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open output[%s]: %s", path, err)
		}
		out = file
	}

	s := &sink{out: out}
	sinks[path] = s
	return s, nil
}

type Singer struct {
	config *Config
	stream types.StreamInterface
	sink   *sink
}

func (s *Singer) GetConfigRef() destination.Config {
	s.config = &Config{}
	return s.config
}

func (s *Singer) Spec() any {
	return Config{}
}

func (s *Singer) Type() string {
	return string(types.Singer)
}

func (s *Singer) Check(_ context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	out, err := openSink(s.config.OutputPath)
	if err != nil {
		return err
	}
	s.sink = out
	return nil
}

// Setup announces the stream schema before any record of it is written
func (s *Singer) Setup(ctx context.Context, stream types.StreamInterface, _ *destination.Options) error {
	if err := s.Check(ctx); err != nil {
		return err
	}
	s.stream = stream

	message := Message{
		Type:          types.SchemaMessage,
		Stream:        stream.Name(),
		Schema:        s.jsonSchema(stream.Schema()),
		KeyProperties: stream.GetStream().SourceDefinedPrimaryKey.Array(),
	}
	if cursor := stream.Cursor(); cursor != "" && stream.GetSyncMode() == types.INCREMENTAL {
		message.BookmarkProperties = []string{cursor}
	}

	return s.sink.emit(message)
}

func (s *Singer) Write(_ context.Context, records []types.RawRecord) error {
	messages := make([]Message, 0, len(records))
	for _, record := range records {
		data := record.Data
		if s.config.IncludeSystemColumns {
			data = make(map[string]any, len(record.Data)+3)
			for key, value := range record.Data {
				data[key] = value
			}
			data[constants.OlakeID] = record.OlakeID
			data[constants.OlakeTimestamp] = record.OlakeTimestamp
			data[constants.OpType] = record.OperationType
		}

		extracted := record.OlakeTimestamp.UTC()
		messages = append(messages, Message{
			Type:          types.RecordMessage,
			Stream:        s.stream.Name(),
			Record:        data,
			TimeExtracted: &extracted,
		})
	}

	return s.sink.emit(messages...)
}

// EmitState writes the bookmarks in the conventional {"bookmarks": {...}} shape
func (s *Singer) EmitState(_ context.Context, state *types.State) error {
	if s.sink == nil {
		return fmt.Errorf("singer writer used before check")
	}

	return s.sink.emit(Message{
		Type:  types.StateMessage,
		Value: map[string]any{"bookmarks": state.Bookmarks()},
	})
}

// DropStreams is a no-op, a message stream holds nothing to clear
func (s *Singer) DropStreams(_ context.Context, selectedStreams []string) error {
	logger.Infof("singer destination keeps no data, nothing to drop for %v", selectedStreams)
	return nil
}

func (s *Singer) Close(_ context.Context) error {
	return nil
}

func (s *Singer) jsonSchema(schema *types.TypeSchema) map[string]any {
	properties := map[string]any{}
	if schema != nil {
		for _, column := range schema.Columns() {
			if !s.config.IncludeSystemColumns && isSystemColumn(column) {
				continue
			}
			_, property := schema.GetProperty(column)
			properties[column] = jsonSchemaProperty(property)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

func isSystemColumn(column string) bool {
	return column == constants.OlakeID || column == constants.OlakeTimestamp || column == constants.OpType
}

func jsonSchemaProperty(property *types.Property) map[string]any {
	withNull := func(typ string) any {
		if property.Nullable() {
			return []string{"null", typ}
		}
		return typ
	}

	switch property.DataType() {
	case types.Int64:
		return map[string]any{"type": withNull("integer")}
	case types.Float64:
		return map[string]any{"type": withNull("number")}
	case types.Bool:
		return map[string]any{"type": withNull("boolean")}
	case types.String:
		return map[string]any{"type": withNull("string")}
	case types.Timestamp, types.TimestampMicro:
		return map[string]any{"type": withNull("string"), "format": "date-time"}
	case types.Object:
		return map[string]any{"type": withNull("object")}
	case types.Array:
		return map[string]any{"type": withNull("array"), "items": map[string]any{}}
	default:
		// variant shaped values accept any json
		return map[string]any{}
	}
}

func init() {
	destination.RegisteredWriters[types.Singer] = func() destination.Writer {
		return new(Singer)
	}
}
