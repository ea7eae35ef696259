package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/olake-ticketmatic/constants"
)

func TestRetryOnBackoff(t *testing.T) {
	transient := errors.New("503 service unavailable")

	tests := []struct {
		name      string
		attempts  int
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{name: "first call succeeds", attempts: 3, failures: 0, err: transient, wantCalls: 1},
		{name: "recovers after retries", attempts: 3, failures: 2, err: transient, wantCalls: 3},
		{name: "attempts exhausted", attempts: 3, failures: 5, err: transient, wantCalls: 3, wantErr: true},
		{name: "non retryable stops", attempts: 3, failures: 5, err: fmt.Errorf("401: %w", constants.ErrNonRetryable), wantCalls: 1, wantErr: true},
		{name: "zero attempts still calls once", attempts: 0, failures: 0, err: transient, wantCalls: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			err := RetryOnBackoff(context.Background(), tc.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tc.failures {
					return tc.err
				}
				return nil
			})
			assert.Equal(t, tc.wantCalls, calls)
			if tc.wantErr {
				assert.ErrorIs(t, err, tc.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryOnBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryOnBackoff(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("connection reset")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestErrExecSequential(t *testing.T) {
	first, second := errors.New("first"), errors.New("second")
	ran := 0
	err := ErrExecSequential(
		func() error { ran++; return first },
		func() error { ran++; return nil },
		func() error { ran++; return second },
	)
	assert.Equal(t, 3, ran)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.NoError(t, ErrExecSequential(func() error { return nil }))
}

type fileConfig struct {
	AccountName string `json:"accountname"`
	PageSize    int    `json:"page_size"`
}

func TestUnmarshalFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"config.json": `{"accountname":"demo","page_size":500}`,
		"config.yaml": "accountname: demo\npage_size: 500\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			var config fileConfig
			require.NoError(t, UnmarshalFile(path, &config, false))
			assert.Equal(t, fileConfig{AccountName: "demo", PageSize: 500}, config)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		var config fileConfig
		assert.Error(t, UnmarshalFile(filepath.Join(dir, "absent.json"), &config, false))
	})
}

func TestEncryptedConfig(t *testing.T) {
	t.Cleanup(func() { viper.Set(constants.EncryptionKey, "") })

	plain := `{"accountname":"demo","page_size":250}`

	viper.Set(constants.EncryptionKey, "")
	passthrough, err := EncryptConfig(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, passthrough)

	viper.Set(constants.EncryptionKey, "correct horse battery staple")
	encrypted, err := EncryptConfig(plain)
	require.NoError(t, err)
	assert.NotEqual(t, plain, encrypted)

	decrypted, err := DecryptConfig(encrypted)
	require.NoError(t, err)
	assert.Equal(t, plain, decrypted)

	// payloads may arrive wrapped in a json string
	decrypted, err = DecryptConfig(fmt.Sprintf("%q", encrypted))
	require.NoError(t, err)
	assert.Equal(t, plain, decrypted)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(encrypted), 0600))
	var config fileConfig
	require.NoError(t, UnmarshalFile(path, &config, true))
	assert.Equal(t, "demo", config.AccountName)

	viper.Set(constants.EncryptionKey, "another key")
	_, err = DecryptConfig(encrypted)
	assert.Error(t, err)
}

func TestGetKeysHash(t *testing.T) {
	record := map[string]interface{}{"orderid": 42, "totalamount": "10.00"}
	changed := map[string]interface{}{"orderid": 42, "totalamount": "12.50"}
	other := map[string]interface{}{"orderid": 43, "totalamount": "10.00"}

	assert.Equal(t, GetKeysHash(record, "orderid"), GetKeysHash(changed, "orderid"))
	assert.NotEqual(t, GetKeysHash(record, "orderid"), GetKeysHash(other, "orderid"))
	assert.NotEqual(t, GetKeysHash(record), GetKeysHash(changed))
}

func TestULIDOrdering(t *testing.T) {
	earlier := genULID(time.Unix(1700000000, 0))
	later := genULID(time.Unix(1700000001, 0))
	assert.Less(t, earlier, later)
	assert.Len(t, ULID(), 26)
}
