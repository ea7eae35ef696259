package types

// Message is a dto for olake output row representation
type Message struct {
	Type             MessageType    `json:"type"`
	ConnectionStatus *StatusRow     `json:"connectionStatus,omitempty"`
	State            *State         `json:"state,omitempty"`
	Catalog          *Catalog       `json:"catalog,omitempty"`
	Spec             map[string]any `json:"spec,omitempty"`
}

// StatusRow is a dto for connection check result serialization
type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// StreamMetadata carries per stream selection options from the streams file
type StreamMetadata struct {
	StreamName     string `json:"stream_name"`
	PartitionRegex string `json:"partition_regex"`
	AppendMode     bool   `json:"append_mode,omitempty"`
}

// Catalog is a dto for formatted catalog serialization
type Catalog struct {
	SelectedStreams map[string][]StreamMetadata `json:"selected_streams,omitempty"`
	Streams         []*ConfiguredStream         `json:"streams,omitempty"`
}

// GetWrappedCatalog selects every discovered stream by default
func GetWrappedCatalog(streams []*Stream) *Catalog {
	catalog := &Catalog{
		Streams:         []*ConfiguredStream{},
		SelectedStreams: make(map[string][]StreamMetadata),
	}

	for _, stream := range streams {
		catalog.Streams = append(catalog.Streams, stream.Wrap())
		catalog.SelectedStreams[stream.Namespace] = append(catalog.SelectedStreams[stream.Namespace], StreamMetadata{
			StreamName: stream.Name,
		})
	}

	return catalog
}
