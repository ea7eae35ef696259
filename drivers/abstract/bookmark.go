package abstract

import (
	"fmt"

	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/datazip-inc/olake-ticketmatic/utils/typeutils"
)

// Bookmark tracks the replication key high-water mark of one stream pass.
//
// The since value is fixed when the pass starts; the high-water mark only moves
// forward as records are observed and is written back to the state on Commit.
type Bookmark struct {
	stream types.StreamInterface
	key    string
	since  any
	value  any
}

// NewBookmark reads the persisted bookmark of stream, falling back to defaultValue
func NewBookmark(state types.StateInterface, stream types.StreamInterface, defaultValue any) *Bookmark {
	key := stream.Cursor()
	since := state.GetCursor(stream.Self(), key)
	if since == nil {
		since = defaultValue
	}

	return &Bookmark{
		stream: stream,
		key:    key,
		since:  since,
		value:  since,
	}
}

// Since is the filter value of the current pass
func (b *Bookmark) Since() any {
	return b.since
}

// Value is the current high-water mark
func (b *Bookmark) Value() any {
	return b.value
}

// Advance raises the high-water mark to the replication key of record when greater.
// A value of another kind than the mark (an empty or garbled timestamp) is skipped.
func (b *Bookmark) Advance(record map[string]any) {
	candidate, found := record[b.key]
	if !found || candidate == nil {
		return
	}
	if b.value != nil && !typeutils.SameCursorKind(candidate, b.value) {
		logger.Warnf("stream[%s]: ignoring %s value %q that does not compare with bookmark %v", b.stream.ID(), b.key, fmt.Sprint(candidate), b.value)
		return
	}

	if b.value == nil || typeutils.CompareCursor(candidate, b.value) > 0 {
		b.value = candidate
	}
}

// Commit stores the high-water mark in state
func (b *Bookmark) Commit(state types.StateInterface) {
	if b.value == nil {
		return
	}
	state.SetCursor(b.stream.Self(), b.key, b.value)
}
