package types

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

type StateType string

const (
	// Per stream state
	StreamType StateType = "STREAM"
)

// State is the persisted run state; a bookmark per stream
type State struct {
	*sync.RWMutex `json:"-"`
	Type          StateType      `json:"type"`
	Version       int            `json:"version"`
	Streams       []*StreamState `json:"streams,omitempty"`
}

// NewState returns an empty stream state at the latest version
func NewState() *State {
	return &State{
		RWMutex: &sync.RWMutex{},
		Type:    StreamType,
		Version: constants.LatestStateVersion,
		Streams: []*StreamState{},
	}
}

func (s *State) initLock() {
	if s.RWMutex == nil {
		s.RWMutex = &sync.RWMutex{}
	}
}

func (s *State) isZero() bool {
	return len(s.Streams) == 0
}

// must be called with the lock held
func (s *State) findStream(stream *ConfiguredStream) (int, bool) {
	for i, one := range s.Streams {
		if one.Namespace == stream.Namespace() && one.Stream == stream.Name() {
			return i, true
		}
	}

	return -1, false
}

func (s *State) GetCursor(stream *ConfiguredStream, key string) any {
	if key == "" {
		return nil
	}
	s.initLock()
	s.RLock()
	defer s.RUnlock()

	index, found := s.findStream(stream)
	if !found {
		return nil
	}

	val, _ := s.Streams[index].State.Load(key)
	return val
}

func (s *State) SetCursor(stream *ConfiguredStream, key string, value any) {
	if key == "" {
		return
	}
	s.initLock()
	s.Lock()
	defer s.Unlock()

	index, found := s.findStream(stream)
	if found {
		s.Streams[index].State.Store(key, value)
		s.Streams[index].HoldsValue.Store(true)
		return
	}

	newStream := &StreamState{
		Stream:    stream.Name(),
		Namespace: stream.Namespace(),
		SyncMode:  string(stream.GetSyncMode()),
	}
	newStream.State.Store(key, value)
	newStream.HoldsValue.Store(true)
	s.Streams = append(s.Streams, newStream)
}

// ResetCursor drops the bookmark of a stream while keeping its entry
func (s *State) ResetCursor(stream *ConfiguredStream) {
	s.initLock()
	s.Lock()
	defer s.Unlock()

	index, found := s.findStream(stream)
	if !found {
		return
	}

	s.Streams[index].State.Delete(stream.Cursor())
	s.Streams[index].HoldsValue.Store(false)
}

// Bookmarks returns a snapshot of the populated stream states keyed by stream name
func (s *State) Bookmarks() map[string]map[string]any {
	s.initLock()
	s.RLock()
	defer s.RUnlock()

	bookmarks := make(map[string]map[string]any)
	for _, stream := range s.Streams {
		if !stream.HoldsValue.Load() {
			continue
		}
		values := make(map[string]any)
		stream.State.Range(func(key, value any) bool {
			values[key.(string)] = value
			return true
		})
		bookmarks[stream.Stream] = values
	}

	return bookmarks
}

func (s *State) MarshalJSON() ([]byte, error) {
	if s.isZero() {
		return json.Marshal(nil)
	}

	type Alias State
	p := Alias(*s)

	populatedStreams := []*StreamState{}
	for _, stream := range p.Streams {
		if stream.HoldsValue.Load() {
			populatedStreams = append(populatedStreams, stream)
		}
	}

	p.Streams = populatedStreams
	return json.Marshal(p)
}

func (s *State) UnmarshalJSON(data []byte) error {
	type Alias State
	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(s),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	s.initLock()
	if s.Type == "" {
		s.Type = StreamType
	}
	if s.Version > constants.LatestStateVersion {
		return fmt.Errorf("state version %d is newer than supported version %d", s.Version, constants.LatestStateVersion)
	}
	constants.LoadedStateVersion = s.Version
	s.Version = constants.LatestStateVersion

	return nil
}

// LogState prints the state message and writes it to the state file
func (s *State) LogState() {
	s.initLock()
	s.RLock()
	defer s.RUnlock()

	if s.isZero() {
		logger.Info("state is empty")
		return
	}

	message, err := json.Marshal(Message{
		Type:  StateMessage,
		State: s,
	})
	if err != nil {
		logger.Errorf("failed to marshal state: %s", err)
		return
	}
	logger.Info(json.RawMessage(message))

	if viper.GetBool(constants.NoSave) {
		return
	}
	if err := logger.FileLoggerWithPath(s, viper.GetString(constants.StatePath)); err != nil {
		logger.Fatalf("failed to write state file: %s", err)
	}
}

type StreamState struct {
	HoldsValue atomic.Bool `json:"-"` // If State holds some value and should not be excluded during unmarshaling then value true

	Stream    string   `json:"stream"`
	Namespace string   `json:"namespace"`
	SyncMode  string   `json:"sync_mode"`
	State     sync.Map `json:"state"`
}

// MarshalJSON custom marshaller to handle sync.Map encoding
func (s *StreamState) MarshalJSON() ([]byte, error) {
	stateMap := make(map[string]any)
	s.State.Range(func(key, value any) bool {
		if strKey, ok := key.(string); ok {
			stateMap[strKey] = value
		}
		return true
	})

	return json.Marshal(&struct {
		Stream    string         `json:"stream"`
		Namespace string         `json:"namespace"`
		SyncMode  string         `json:"sync_mode"`
		State     map[string]any `json:"state"`
	}{
		Stream:    s.Stream,
		Namespace: s.Namespace,
		SyncMode:  s.SyncMode,
		State:     stateMap,
	})
}

// UnmarshalJSON custom unmarshaller to handle sync.Map decoding
func (s *StreamState) UnmarshalJSON(data []byte) error {
	aux := &struct {
		Stream    string         `json:"stream"`
		Namespace string         `json:"namespace"`
		SyncMode  string         `json:"sync_mode"`
		State     map[string]any `json:"state"`
	}{}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	s.Stream = aux.Stream
	s.Namespace = aux.Namespace
	s.SyncMode = aux.SyncMode
	for key, value := range aux.State {
		s.State.Store(key, value)
	}
	if len(aux.State) > 0 {
		s.HoldsValue.Store(true)
	}

	return nil
}
