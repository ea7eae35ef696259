package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/goccy/go-json"
	pqgo "github.com/parquet-go/parquet-go"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/datazip-inc/olake-ticketmatic/utils/typeutils"
)

var partitionPattern = regexp.MustCompile(`\{([^}]+)\}`)

type FileMetadata struct {
	fileName    string
	recordCount int
	writer      *pqgo.GenericWriter[any]
	parquetFile source.ParquetFile
}

// Parquet writes one rolling set of files per stream partition
// local_path/namespace/stream/<partition>/<timestamp>_<ulid>.parquet
type Parquet struct {
	options          *destination.Options
	config           *Config
	stream           types.StreamInterface
	schema           *pqgo.Schema
	basePath         string
	partitionedFiles map[string][]*FileMetadata
	s3Client         *s3.S3
	uploader         *s3manager.Uploader
}

func (p *Parquet) GetConfigRef() destination.Config {
	p.config = &Config{}
	return p.config
}

func (p *Parquet) Spec() any {
	return Config{}
}

func (p *Parquet) Type() string {
	return string(types.Parquet)
}

// setup s3 client if credentials provided
func (p *Parquet) initS3Writer() error {
	if !p.config.s3Enabled() || p.s3Client != nil {
		return nil
	}

	s3Config := aws.Config{
		Region: aws.String(p.config.Region),
	}
	if p.config.AccessKey != "" && p.config.SecretKey != "" {
		s3Config.Credentials = credentials.NewStaticCredentials(p.config.AccessKey, p.config.SecretKey, "")
	}
	if p.config.S3Endpoint != "" {
		s3Config.Endpoint = aws.String(p.config.S3Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(&s3Config)
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %s", err)
	}
	p.s3Client = s3.New(sess)
	p.uploader = s3manager.NewUploader(sess)

	return nil
}

// Check validates local paths and S3 access if applicable.
func (p *Parquet) Check(ctx context.Context) error {
	if err := p.config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(p.config.Path, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create local path: %s", err)
	}

	if err := p.initS3Writer(); err != nil {
		return err
	}
	if p.s3Client != nil {
		if _, err := p.s3Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.config.Bucket)}); err != nil {
			return fmt.Errorf("failed to validate S3 bucket[%s]: %s", p.config.Bucket, err)
		}
	}

	return nil
}

// Setup configures the writer for a stream; files are created lazily per partition.
func (p *Parquet) Setup(_ context.Context, stream types.StreamInterface, options *destination.Options) error {
	if err := p.config.Validate(); err != nil {
		return err
	}

	p.options = options
	p.stream = stream
	p.schema = stream.Schema().ToParquet()
	p.basePath = filepath.Join(stream.Namespace(), stream.Name())
	p.partitionedFiles = make(map[string][]*FileMetadata)

	if err := p.initS3Writer(); err != nil {
		return fmt.Errorf("failed to setup S3 writer: %s", err)
	}

	return nil
}

func (p *Parquet) createNewPartitionFile(basePath string) (*FileMetadata, error) {
	directoryPath := filepath.Join(p.config.Path, basePath)
	if err := os.MkdirAll(directoryPath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directories[%s]: %s", directoryPath, err)
	}

	fileName := utils.TimestampedFileName(constants.ParquetFileExt)
	pqFile, err := local.NewLocalFileWriter(filepath.Join(directoryPath, fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file writer: %s", err)
	}

	metadata := &FileMetadata{
		fileName:    fileName,
		writer:      pqgo.NewGenericWriter[any](pqFile, p.schema, pqgo.Compression(&pqgo.Snappy)),
		parquetFile: pqFile,
	}
	p.partitionedFiles[basePath] = append(p.partitionedFiles[basePath], metadata)

	return metadata, nil
}

// Write converts records to the stream schema and appends them to their partition file.
func (p *Parquet) Write(_ context.Context, records []types.RawRecord) error {
	for _, record := range records {
		row, err := p.toRow(record)
		if err != nil {
			return err
		}

		path := p.getPartitionedFilePath(record.Data, record.OlakeTimestamp)
		files := p.partitionedFiles[path]

		var file *FileMetadata
		if len(files) == 0 || files[len(files)-1].recordCount >= p.config.MaxRows {
			file, err = p.createNewPartitionFile(path)
			if err != nil {
				return err
			}
		} else {
			file = files[len(files)-1]
		}

		if _, err := file.writer.Write([]any{row}); err != nil {
			return fmt.Errorf("failed to write record: %s", err)
		}
		file.recordCount++
	}

	return nil
}

func (p *Parquet) toRow(record types.RawRecord) (map[string]any, error) {
	row := make(map[string]any, len(record.Data)+3)
	for key, value := range record.Data {
		row[key] = value
	}
	row[constants.OlakeID] = record.OlakeID
	row[constants.OlakeTimestamp] = record.OlakeTimestamp
	row[constants.OpType] = record.OperationType

	schema := p.stream.Schema()
	if err := typeutils.ReformatRecord(schema, row); err != nil {
		return nil, err
	}

	// columns outside the schema have no place in the file
	for key, value := range row {
		found, property := schema.GetProperty(key)
		if !found {
			delete(row, key)
			continue
		}
		if value == nil {
			continue
		}

		switch datatype := property.DataType(); {
		case datatype.NeedsStringification():
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode column[%s]: %s", key, err)
			}
			row[key] = string(encoded)
		case datatype == types.Timestamp || datatype == types.TimestampMicro:
			if ts, ok := value.(time.Time); ok {
				row[key] = ts.UnixMicro()
			}
		}
	}

	return row, nil
}

// Close closes all parquet files, drops empty ones and uploads the rest to S3 if configured.
func (p *Parquet) Close(ctx context.Context) error {
	for basePath, files := range p.partitionedFiles {
		for _, file := range files {
			if err := file.writer.Close(); err != nil {
				return fmt.Errorf("failed to close writer: %s", err)
			}
			if err := file.parquetFile.Close(); err != nil {
				return fmt.Errorf("failed to close parquet file: %s", err)
			}

			filePath := filepath.Join(p.config.Path, basePath, file.fileName)
			if file.recordCount == 0 {
				removeLocalFile(filePath, "no records written", file.recordCount)
				continue
			}

			if p.uploader != nil {
				if err := p.upload(ctx, filePath, filepath.Join(p.config.Prefix, basePath, file.fileName)); err != nil {
					return err
				}
			}
			logger.Infof("thread[%d] finished file[%s] with %d records", p.options.Number, filePath, file.recordCount)
		}
	}
	p.partitionedFiles = make(map[string][]*FileMetadata)

	return nil
}

func (p *Parquet) upload(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file for upload: %s", err)
	}
	defer file.Close()

	_, err = p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to s3: %s", err)
	}

	logger.Debugf("uploaded file[%s] to s3://%s/%s", localPath, p.config.Bucket, key)
	return nil
}

// DropStreams removes the files of the given "namespace.stream" identifiers
func (p *Parquet) DropStreams(ctx context.Context, selectedStreams []string) error {
	for _, id := range selectedStreams {
		relative := filepath.Join(strings.SplitN(id, ".", 2)...)

		if err := os.RemoveAll(filepath.Join(p.config.Path, relative)); err != nil {
			return fmt.Errorf("failed to drop local files of stream[%s]: %s", id, err)
		}

		if p.s3Client == nil {
			continue
		}

		prefix := filepath.Join(p.config.Prefix, relative) + "/"
		var dropErr error
		err := p.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
			Bucket: aws.String(p.config.Bucket),
			Prefix: aws.String(prefix),
		}, func(page *s3.ListObjectsV2Output, _ bool) bool {
			if len(page.Contents) == 0 {
				return true
			}
			objects := make([]*s3.ObjectIdentifier, 0, len(page.Contents))
			for _, object := range page.Contents {
				objects = append(objects, &s3.ObjectIdentifier{Key: object.Key})
			}
			_, dropErr = p.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(p.config.Bucket),
				Delete: &s3.Delete{Objects: objects},
			})
			return dropErr == nil
		})
		if err != nil || dropErr != nil {
			return fmt.Errorf("failed to drop s3 objects of stream[%s]: %v", id, utils.Ternary(err != nil, err, dropErr))
		}
	}

	logger.Infof("dropped parquet output of streams %v", selectedStreams)
	return nil
}

// getPartitionedFilePath resolves the stream partition regex, e.g.
// /{lastupdatets, 'unknown', 'YYYY'}/{now(), '', 'MM'}
func (p *Parquet) getPartitionedFilePath(values map[string]any, olakeTimestamp time.Time) string {
	pattern := p.stream.Self().StreamMetadata.PartitionRegex
	if pattern == "" {
		return p.basePath
	}

	result := partitionPattern.ReplaceAllStringFunc(pattern, func(match string) string {
		block := strings.Split(strings.Trim(match, "{}"), ",")
		for len(block) < 3 {
			block = append(block, "")
		}

		colName := strings.TrimSpace(strings.Trim(strings.TrimSpace(block[0]), `'`))
		defaultValue := strings.TrimSpace(strings.Trim(strings.TrimSpace(block[1]), `'`))
		granularity := strings.TrimSpace(strings.Trim(strings.TrimSpace(block[2]), `'`))

		if defaultValue == "" {
			defaultValue = fmt.Sprintf("default_%s", colName)
		}

		var value any = olakeTimestamp
		if colName != "now()" {
			found := false
			value, found = values[colName]
			if !found || value == nil {
				return defaultValue
			}
		}

		return applyGranularity(value, granularity)
	})

	return filepath.Join(p.basePath, strings.TrimSuffix(result, "/"))
}

func applyGranularity(value any, granularity string) string {
	if granularity == "" {
		return fmt.Sprintf("%v", value)
	}

	timestamp, err := typeutils.ReformatDate(value)
	if err != nil {
		logger.Debugf("failed to convert partition value to timestamp: %s", err)
		return fmt.Sprintf("%v", value)
	}

	switch granularity {
	case "HH":
		return fmt.Sprintf("%02d", timestamp.Hour())
	case "DD":
		return fmt.Sprintf("%02d", timestamp.Day())
	case "WW":
		_, week := timestamp.ISOWeek()
		return fmt.Sprintf("%02d", week)
	case "MM":
		return fmt.Sprintf("%02d", int(timestamp.Month()))
	case "YYYY":
		return fmt.Sprintf("%d", timestamp.Year())
	default:
		return fmt.Sprintf("%v", value)
	}
}

func removeLocalFile(filePath, reason string, recordCount int) {
	if err := os.Remove(filePath); err != nil {
		logger.Warnf("failed to delete file[%s] with %d records (%s): %s", filePath, recordCount, reason, err)
		return
	}
	logger.Debugf("deleted file[%s] with %d records (%s)", filePath, recordCount, reason)
}

func init() {
	destination.RegisteredWriters[types.Parquet] = func() destination.Writer {
		return new(Parquet)
	}
}
