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

// FullRefresh re-reads every record of a stream; no state is kept for it
func (a *AbstractDriver) FullRefresh(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface) (err error) {
	logger.Infof("starting full refresh for stream[%s]", stream.ID())

	inserter, err := pool.NewThread(ctx, stream, destination.WithIdentifier(generateThreadID(stream.ID())))
	if err != nil {
		return fmt.Errorf("failed to create new writer thread: %s", err)
	}

	defer safego.RecoverInto(&err)
	defer closeWriter(ctx, inserter, &err)

	primaryKeys := stream.GetStream().SourceDefinedPrimaryKey.Array()
	return a.driver.StreamRecords(ctx, stream, func(ctx context.Context, record map[string]any) error {
		return inserter.Push(ctx, types.CreateRawRecord(utils.GetKeysHash(record, primaryKeys...), record, "r", time.Now().UTC()))
	})
}
