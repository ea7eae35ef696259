package singer

import "github.com/datazip-inc/olake-ticketmatic/utils"

type Config struct {
	// OutputPath redirects messages to a file; stdout is used when empty
	OutputPath string `json:"output_path,omitempty" title:"Output Path" description:"file receiving the message stream, stdout when empty"`
	// IncludeSystemColumns adds _olake_id, _olake_timestamp and _op_type to every record
	IncludeSystemColumns bool `json:"include_system_columns,omitempty" title:"Include System Columns"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}
