package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	bufferSize int
	name       string
}

func withBufferSize(n int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if n <= 0 {
			return errors.New("buffer size must be positive")
		}
		c.bufferSize = n

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) { c.name = name })
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withBufferSize(64), withName("first"), withName("second"))
		require.NoError(t, err)
		require.Equal(t, 64, cfg.bufferSize)
		require.Equal(t, "second", cfg.name)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withName("kept"), withBufferSize(0), withName("skipped"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "must be positive")
		require.Equal(t, "kept", cfg.name)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg, nil, withName("x")))
		require.Equal(t, "x", cfg.name)
	})

	t.Run("no options", func(t *testing.T) {
		require.NoError(t, Apply(&testConfig{}))
	})
}
