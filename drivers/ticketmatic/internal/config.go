package driver

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/typeutils"
)

const (
	defaultRequestTimeout = 60
	maxPageSize           = 1000
)

// Config holds the Ticketmatic account credentials and extraction settings
type Config struct {
	AccountName      string   `json:"accountname" validate:"required,accountname" title:"Account Name" description:"Short name of the Ticketmatic account" order:"1"`
	APIKey           string   `json:"api_key" validate:"required" title:"API Key" order:"2" secret:"true"`
	APISecret        string   `json:"api_secret" validate:"required" title:"API Secret" order:"3" secret:"true"`
	StartDate        string   `json:"start_date,omitempty" title:"Start Date" description:"Records updated before this date are skipped on the first run" default:"2022-10-01" order:"4"`
	PageSize         int      `json:"page_size,omitempty" title:"Page Size" default:"1000" order:"5"`
	BaseURL          string   `json:"base_url,omitempty" title:"Base URL" default:"https://apps.ticketmatic.com/api/1" order:"6"`
	PaginationPolicy string   `json:"pagination_policy,omitempty" title:"Pagination Policy" description:"Overrides the per stream pagination policy" enum:"total_count,empty_page" order:"7"`
	MaxThreads       int      `json:"max_threads,omitempty" title:"Max Threads" default:"1" order:"8"`
	RetryCount       int      `json:"retry_count,omitempty" title:"Retry Count" default:"0" order:"9"`
	RequestTimeout   int      `json:"request_timeout_seconds,omitempty" title:"Request Timeout (seconds)" default:"60" order:"10"`
	Streams          []string `json:"streams,omitempty" title:"Streams" description:"Restricts discovery to the listed streams" order:"11"`
}

// ConfigurationError is returned when the source config cannot be used
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid ticketmatic config: %s", e.Reason)
}

// Validate checks the required fields and fills defaults
func (c *Config) Validate() error {
	if err := utils.Validate(c); err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}

	if c.StartDate == "" {
		c.StartDate = constants.DefaultStartDate
	}
	if _, err := typeutils.ReformatDate(c.StartDate); err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("start_date %q is not a date: %s", c.StartDate, err)}
	}

	if c.PageSize <= 0 {
		c.PageSize = constants.DefaultPageSize
	}
	if c.PageSize > maxPageSize {
		return &ConfigurationError{Reason: fmt.Sprintf("page_size must not exceed %d", maxPageSize)}
	}

	if c.BaseURL == "" {
		c.BaseURL = constants.TicketmaticAPIURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigurationError{Reason: fmt.Sprintf("base_url %q must be an http(s) url", c.BaseURL)}
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	switch PolicyName(c.PaginationPolicy) {
	case "", TotalCountPolicy, EmptyPagePolicy:
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unknown pagination_policy %q", c.PaginationPolicy)}
	}

	if c.MaxThreads <= 0 {
		c.MaxThreads = constants.DefaultThreadCount
	}
	if c.RetryCount < 0 {
		c.RetryCount = constants.DefaultRetryCount
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}

	for _, name := range c.Streams {
		if _, ok := Catalog[name]; !ok {
			return &ConfigurationError{Reason: fmt.Sprintf("unknown stream %q in streams", name)}
		}
	}

	return nil
}

func (c *Config) timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// accountURL is the base of every request for this account
func (c *Config) accountURL() string {
	return c.BaseURL + "/" + c.AccountName
}
