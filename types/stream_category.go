package types

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

type StreamCategories struct {
	SelectedStreams    []string
	IncrementalStreams []StreamInterface
	StandardStreams    []StreamInterface
	NewStreamsState    []*StreamState
}

// All returns every categorised stream, incremental streams first
func (c *StreamCategories) All() []StreamInterface {
	return append(append([]StreamInterface{}, c.IncrementalStreams...), c.StandardStreams...)
}

// IdentifySelectedStreams validates the configured catalog against discovered streams.
// Passing nil streams skips validation and keeps the state untouched (used by clear-destination).
func IdentifySelectedStreams(catalog *Catalog, streams []*Stream, state *State) (*StreamCategories, error) {
	categories := &StreamCategories{
		SelectedStreams:    []string{},
		IncrementalStreams: []StreamInterface{},
		StandardStreams:    []StreamInterface{},
		NewStreamsState:    []*StreamState{},
	}
	// create a map for namespace and streamMetadata
	selectedStreamsMap := make(map[string]StreamMetadata)
	for namespace, streamsMetadata := range catalog.SelectedStreams {
		for _, streamMetadata := range streamsMetadata {
			selectedStreamsMap[fmt.Sprintf("%s.%s", namespace, streamMetadata.StreamName)] = streamMetadata
		}
	}

	// Create a map for quick state lookup by stream ID
	stateStreamMap := make(map[string]*StreamState)
	for _, stream := range state.Streams {
		stateStreamMap[fmt.Sprintf("%s.%s", stream.Namespace, stream.Stream)] = stream
	}

	sourceStreams := StreamsToMap(streams...)
	_, _ = utils.ArrayContains(catalog.Streams, func(elem *ConfiguredStream) bool {
		sMetadata, selected := selectedStreamsMap[elem.ID()]
		if !(catalog.SelectedStreams == nil || selected) {
			logger.Debugf("Skipping stream %s.%s; not in selected streams.", elem.Namespace(), elem.Name())
			return false
		}

		if streams != nil {
			source, found := sourceStreams[elem.ID()]
			if !found {
				logger.Warnf("Skipping; Configured Stream %s not found in source", elem.ID())
				return false
			}
			err := elem.Validate(source)
			if err != nil {
				logger.Warnf("Skipping; Configured Stream %s found invalid due to reason: %s", elem.ID(), err)
				return false
			}
		}
		if selected {
			elem.StreamMetadata = sMetadata
		}

		categories.SelectedStreams = append(categories.SelectedStreams, elem.ID())
		switch elem.Stream.SyncMode {
		case INCREMENTAL:
			categories.IncrementalStreams = append(categories.IncrementalStreams, elem)
			if streamState, exists := stateStreamMap[elem.ID()]; exists {
				categories.NewStreamsState = append(categories.NewStreamsState, streamState)
			}
		default:
			categories.StandardStreams = append(categories.StandardStreams, elem)
		}

		return false
	})

	// state of unselected and full refresh streams is dropped
	if streams != nil {
		state.Streams = categories.NewStreamsState
	}
	if len(categories.SelectedStreams) == 0 {
		return nil, fmt.Errorf("no valid streams found in catalog")
	}

	logger.Infof("Valid selected streams are %s", strings.Join(categories.SelectedStreams, ", "))
	return categories, nil
}
