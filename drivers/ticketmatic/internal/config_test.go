package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/olake-ticketmatic/constants"
)

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		return Config{AccountName: "demo", APIKey: "key", APISecret: "secret"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing account", func(c *Config) { c.AccountName = "" }, true},
		{"account with uppercase", func(c *Config) { c.AccountName = "Demo" }, true},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"missing api secret", func(c *Config) { c.APISecret = "" }, true},
		{"bad start date", func(c *Config) { c.StartDate = "yesterday" }, true},
		{"start date with time", func(c *Config) { c.StartDate = "2023-01-01 10:00:00" }, false},
		{"page size too large", func(c *Config) { c.PageSize = 5000 }, true},
		{"unknown policy", func(c *Config) { c.PaginationPolicy = "cursor" }, true},
		{"empty page policy", func(c *Config) { c.PaginationPolicy = "empty_page" }, false},
		{"base url without scheme", func(c *Config) { c.BaseURL = "apps.ticketmatic.com" }, true},
		{"unknown stream", func(c *Config) { c.Streams = []string{"orders", "invoices"} }, true},
		{"known streams", func(c *Config) { c.Streams = []string{"orders", "events"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr {
				var configErr *ConfigurationError
				assert.ErrorAs(t, err, &configErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	config := &Config{AccountName: "demo", APIKey: "key", APISecret: "secret", BaseURL: "https://example.test/api/1/", RetryCount: -2}
	require.NoError(t, config.Validate())

	assert.Equal(t, constants.DefaultStartDate, config.StartDate)
	assert.Equal(t, constants.DefaultPageSize, config.PageSize)
	assert.Equal(t, constants.DefaultThreadCount, config.MaxThreads)
	assert.Equal(t, constants.DefaultRetryCount, config.RetryCount)
	assert.Equal(t, defaultRequestTimeout, config.RequestTimeout)
	assert.Equal(t, "https://example.test/api/1/demo", config.accountURL())

	config = &Config{AccountName: "demo", APIKey: "key", APISecret: "secret"}
	require.NoError(t, config.Validate())
	assert.Equal(t, "https://apps.ticketmatic.com/api/1/demo", config.accountURL())
}
