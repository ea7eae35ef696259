package types

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/olake-ticketmatic/constants"
)

func incrementalStream(name string) *ConfiguredStream {
	stream := NewStream(name, "ticketmatic").
		WithPrimaryKey("id").
		WithSyncMode(FULLREFRESH, INCREMENTAL).
		WithCursorField("lastupdatets")
	stream.SyncMode = INCREMENTAL
	stream.CursorField = "lastupdatets"
	return stream.Wrap()
}

func TestStateCursor(t *testing.T) {
	state := NewState()
	orders := incrementalStream("orders")
	events := incrementalStream("events")

	assert.Nil(t, state.GetCursor(orders, "lastupdatets"))

	state.SetCursor(orders, "lastupdatets", "2024-01-01 00:00:00")
	state.SetCursor(orders, "lastupdatets", "2024-02-01 00:00:00")
	state.SetCursor(events, "", "ignored")

	assert.Equal(t, "2024-02-01 00:00:00", state.GetCursor(orders, "lastupdatets"))
	assert.Nil(t, state.GetCursor(events, "lastupdatets"))
	assert.Len(t, state.Streams, 1)
	assert.Equal(t, map[string]map[string]any{
		"orders": {"lastupdatets": "2024-02-01 00:00:00"},
	}, state.Bookmarks())

	state.ResetCursor(orders)
	assert.Nil(t, state.GetCursor(orders, "lastupdatets"))
	assert.Empty(t, state.Bookmarks())
}

func TestStateMarshalSkipsEmptyStreams(t *testing.T) {
	state := NewState()
	b, err := json.Marshal(state)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	orders := incrementalStream("orders")
	contacts := incrementalStream("contacts")
	state.SetCursor(orders, "lastupdatets", "2024-03-01 10:00:00")
	state.SetCursor(contacts, "lastupdatets", "2024-03-01 10:00:00")
	state.ResetCursor(contacts)

	b, err = json.Marshal(state)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	streams, ok := decoded["streams"].([]any)
	require.True(t, ok)
	require.Len(t, streams, 1)
	assert.Equal(t, "orders", streams[0].(map[string]any)["stream"])
	assert.Equal(t, "incremental", streams[0].(map[string]any)["sync_mode"])
}

func TestStateUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		cursor  any
	}{
		{
			name:   "current version",
			input:  `{"type":"STREAM","version":1,"streams":[{"stream":"orders","namespace":"ticketmatic","sync_mode":"incremental","state":{"lastupdatets":"2024-01-05 08:00:00"}}]}`,
			cursor: "2024-01-05 08:00:00",
		},
		{
			name:  "missing type defaults to stream",
			input: `{"version":1,"streams":[]}`,
		},
		{
			name:    "newer version",
			input:   `{"type":"STREAM","version":99}`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state := &State{}
			err := json.Unmarshal([]byte(tc.input), state)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StreamType, state.Type)
			assert.Equal(t, constants.LatestStateVersion, state.Version)
			assert.Equal(t, tc.cursor, state.GetCursor(incrementalStream("orders"), "lastupdatets"))
		})
	}
}
