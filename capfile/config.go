package capfile

import (
	"fmt"

	"github.com/arloliu/caplog/endian"
	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/internal/options"
)

// DefaultReadBufferSize is the size of the read buffer in front of the capture stream.
const DefaultReadBufferSize = 64 * 1024 // 64KiB

// ReaderConfig holds the configuration of a Reader.
type ReaderConfig struct {
	engine     endian.EndianEngine
	bufferSize int
}

func newReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		engine:     endian.Native(),
		bufferSize: DefaultReadBufferSize,
	}
}

// ReaderOption represents a functional option for configuring a Reader.
type ReaderOption = options.Option[*ReaderConfig]

// WithByteOrder sets the byte order used by Readings and Field.Values. It must match the
// host that recorded the file; the default is the native byte order.
func WithByteOrder(engine endian.EndianEngine) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		if engine != nil {
			c.engine = engine
		}
	})
}

// WithReadBufferSize sets the size of the read buffer.
func WithReadBufferSize(size int) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		if size <= 0 {
			return fmt.Errorf("%w: must be positive, got %d", errs.ErrInvalidBufferSize, size)
		}
		c.bufferSize = size

		return nil
	})
}
