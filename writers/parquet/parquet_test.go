package parquet

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	pqgo "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
)

func eventsStream(partition string) *types.ConfiguredStream {
	stream := types.NewStream("events", "ticketmatic").WithPrimaryKey("id")
	stream.UpsertField("id", types.Int64, false)
	stream.UpsertField("name", types.String, true)
	stream.UpsertField("lastupdatets", types.Timestamp, true)
	stream.UpsertField("prices", types.Object, true)
	stream.UpsertField("c_status", types.Float64, true)
	stream.UpsertField(constants.OlakeID, types.String, false)
	stream.UpsertField(constants.OlakeTimestamp, types.TimestampMicro, false)
	stream.UpsertField(constants.OpType, types.String, false)

	configured := stream.Wrap()
	configured.StreamMetadata.PartitionRegex = partition
	return configured
}

func newParquet(t *testing.T, config *Config) *Parquet {
	t.Helper()
	writer := destination.RegisteredWriters[types.Parquet]().(*Parquet)
	ref := writer.GetConfigRef().(*Config)
	*ref = *config
	require.NoError(t, writer.Check(context.Background()))
	return writer
}

func parquetFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	require.NoError(t, filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == "."+constants.ParquetFileExt {
			files = append(files, path)
		}
		return nil
	}))
	return files
}

func numRows(t *testing.T, path string) int64 {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	file, err := pqgo.OpenFile(f, info.Size())
	require.NoError(t, err)
	return file.NumRows()
}

func events(n int) []types.RawRecord {
	records := make([]types.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, types.CreateRawRecord("hash", map[string]any{
			"id":           float64(i + 1),
			"name":         "concert",
			"lastupdatets": "2023-05-06 07:08:09",
			"prices":       map[string]any{"contingents": []any{}},
			"c_status":     float64(2),
			"untracked":    "dropped",
		}, "r", time.Now()))
	}
	return records
}

func TestParquetWriteRollsFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writer := newParquet(t, &Config{Path: root, MaxRows: 2})

	require.NoError(t, writer.Setup(ctx, eventsStream(""), &destination.Options{Number: 1}))
	require.NoError(t, writer.Write(ctx, events(5)))
	require.NoError(t, writer.Close(ctx))

	files := parquetFiles(t, filepath.Join(root, "ticketmatic", "events"))
	require.Len(t, files, 3)

	var total int64
	for _, file := range files {
		total += numRows(t, file)
	}
	assert.Equal(t, int64(5), total)
}

func TestParquetPartitionedPath(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writer := newParquet(t, &Config{Path: root})

	stream := eventsStream("/{lastupdatets, 'unknown', 'YYYY'}/{missing, 'none', ''}")
	require.NoError(t, writer.Setup(ctx, stream, &destination.Options{}))
	require.NoError(t, writer.Write(ctx, events(1)))
	require.NoError(t, writer.Close(ctx))

	files := parquetFiles(t, filepath.Join(root, "ticketmatic", "events", "2023", "none"))
	assert.Len(t, files, 1)
}

func TestParquetDropStreams(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writer := newParquet(t, &Config{Path: root})

	require.NoError(t, writer.Setup(ctx, eventsStream(""), &destination.Options{}))
	require.NoError(t, writer.Write(ctx, events(1)))
	require.NoError(t, writer.Close(ctx))
	require.NotEmpty(t, parquetFiles(t, root))

	require.NoError(t, writer.DropStreams(ctx, []string{"ticketmatic.events"}))
	assert.Empty(t, parquetFiles(t, root))
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"local only", Config{Path: "/tmp/out"}, false},
		{"missing path", Config{}, true},
		{"bucket without region", Config{Path: "/tmp/out", Bucket: "b"}, true},
		{"negative max rows", Config{Path: "/tmp/out", MaxRows: -1}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, defaultMaxRows, tc.config.MaxRows)
		})
	}
}
