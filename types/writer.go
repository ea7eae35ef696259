package types

type DestinationType string

const (
	Singer  DestinationType = "SINGER"
	Parquet DestinationType = "PARQUET"
)

// WriterConfig is the destination file passed with --destination
type WriterConfig struct {
	Type         DestinationType `json:"type"`
	WriterConfig any             `json:"writer"`
	// number of records buffered per writer thread before a flush
	BatchSize int `json:"batch_size,omitempty"`
}
