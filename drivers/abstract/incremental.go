package abstract

import (
	"context"
	"fmt"
	"time"

	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/datazip-inc/olake-ticketmatic/utils/safego"
)

// Incremental reads the records changed since the stream bookmark. The bookmark
// advances with every pushed record and is committed once the pushed records
// are flushed, also when the read stopped on an error.
func (a *AbstractDriver) Incremental(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface) (err error) {
	if stream.Cursor() == "" {
		return fmt.Errorf("stream[%s] has no cursor field for incremental sync", stream.ID())
	}

	bookmark := NewBookmark(a.state, stream, a.driver.DefaultCursorValue(stream))
	logger.Infof("starting incremental sync for stream[%s] with %s since %v", stream.ID(), stream.Cursor(), bookmark.Since())

	threadID := generateThreadID(stream.ID())
	inserter, err := pool.NewThread(ctx, stream, destination.WithIdentifier(threadID))
	if err != nil {
		return fmt.Errorf("failed to create new writer thread: %s", err)
	}

	defer safego.RecoverInto(&err)
	defer func() {
		if closeWriter(ctx, inserter, &err) {
			bookmark.Commit(a.state)
		}
		if err != nil {
			logger.Warnf("thread[%s]: incremental sync stopped at bookmark %v: %s", threadID, bookmark.Value(), err)
		}
	}()

	primaryKeys := stream.GetStream().SourceDefinedPrimaryKey.Array()
	return a.driver.StreamIncrementalChanges(ctx, stream, bookmark.Since(), func(ctx context.Context, record map[string]any) error {
		if err := inserter.Push(ctx, types.CreateRawRecord(utils.GetKeysHash(record, primaryKeys...), record, "u", time.Now().UTC())); err != nil {
			return err
		}
		bookmark.Advance(record)
		return nil
	})
}
