package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "jobsrv.yml")
	require.NoError(t, os.WriteFile(f, []byte(body), 0o600))
	return f
}

func TestNew(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		c, err := New("")
		require.NoError(t, err)
		assert.Equal(t, &Config{
			Address:     defaultAddress,
			Workers:     defaultWorkers,
			Root:        defaultRoot,
			SleepDelay:  defaultSleepDelay,
			ReadTimeout: defaultReadTimeout,
		}, c)
	})

	t.Run("full file", func(t *testing.T) {
		c, err := New(writeConfig(t, `
address: 127.0.0.1:8080
workers: 8
root: ./www
sleep-delay: 250ms
read-timeout: 3s
respawn: true
prometheus:
  address: :9090
`))
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:8080", c.Address)
		assert.Equal(t, 8, c.Workers)
		assert.Equal(t, "./www", c.Root)
		assert.Equal(t, 250*time.Millisecond, c.SleepDelay)
		assert.Equal(t, 3*time.Second, c.ReadTimeout)
		assert.True(t, c.Respawn)
		require.NotNil(t, c.Prometheus)
		assert.Equal(t, ":9090", c.Prometheus.Address)
	})

	t.Run("partial file gets defaults", func(t *testing.T) {
		c, err := New(writeConfig(t, "workers: 2\n"))
		require.NoError(t, err)
		assert.Equal(t, 2, c.Workers)
		assert.Equal(t, defaultAddress, c.Address)
		assert.Equal(t, defaultReadTimeout, c.ReadTimeout)
		assert.Nil(t, c.Prometheus)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := New(writeConfig(t, "workers: -1\n"))
		assert.EqualError(t, err, "invalid number of workers -1")

		_, err = New(writeConfig(t, "sleep-delay: -1s\n"))
		assert.Error(t, err)

		_, err = New(writeConfig(t, "read-timeout: -1s\n"))
		assert.EqualError(t, err, "invalid read-timeout -1s")

		_, err = New(writeConfig(t, "prometheus: {}\n"))
		assert.EqualError(t, err, "prometheus address is required")
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := New(writeConfig(t, "workers: [\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "nope.yml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
