package parquet

import (
	"fmt"

	"github.com/datazip-inc/olake-ticketmatic/utils"
)

const defaultMaxRows = 1000000

type Config struct {
	Path      string `json:"local_path" validate:"required" title:"Local Path" description:"directory the parquet files are written to" order:"1"`
	Bucket    string `json:"s3_bucket,omitempty" title:"S3 Bucket" order:"2"`
	Region    string `json:"s3_region,omitempty" title:"S3 Region" order:"3"`
	AccessKey string `json:"s3_access_key,omitempty" title:"S3 Access Key" secret:"true"`
	SecretKey string `json:"s3_secret_key,omitempty" title:"S3 Secret Key" secret:"true"`
	Prefix    string `json:"s3_path,omitempty" title:"S3 Path" description:"key prefix of uploaded files"`
	// S3 endpoint for custom S3-compatible services (like MinIO)
	S3Endpoint string `json:"s3_endpoint,omitempty" title:"S3 Endpoint"`
	// Maximum rows per file before rolling over to a new one
	MaxRows int `json:"max_rows,omitempty" title:"Max Rows Per File" default:"1000000"`
}

func (c *Config) Validate() error {
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must be a positive value")
	}
	if c.MaxRows == 0 {
		c.MaxRows = defaultMaxRows
	}

	if (c.Bucket == "") != (c.Region == "") {
		return fmt.Errorf("s3_bucket and s3_region must be set together")
	}

	return utils.Validate(c)
}

func (c *Config) s3Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}
