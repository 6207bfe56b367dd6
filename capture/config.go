package capture

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/arloliu/caplog/compress"
	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/format"
	"github.com/arloliu/caplog/internal/options"
)

const (
	// DefaultBufferSize is the size of the write buffer in front of each capture file.
	DefaultBufferSize = 64 * 1024 // 64KiB

	// DefaultMaxLogDuration is the rotation interval of a new Manager.
	DefaultMaxLogDuration = time.Hour

	// FileExtension is the suffix of capture files.
	FileExtension = ".cap"

	// DirectoryLayout formats the name of the timestamped directory of a capture session,
	// for example 20240315_142530+0100.
	DirectoryLayout = "20060102_150405-0700"
)

// LogConfig holds the configuration of a Log.
type LogConfig struct {
	logger      *zap.Logger
	bufferSize  int
	compression format.CompressionType
	codec       compress.Codec
}

func newLogConfig() *LogConfig {
	return &LogConfig{
		logger:      zap.NewNop(),
		bufferSize:  DefaultBufferSize,
		compression: format.CompressionNone,
	}
}

func (c *LogConfig) setArchiveCompression(comp format.CompressionType) error {
	codec, err := compress.CreateCodec(comp, "archive")
	if err != nil {
		return err
	}

	c.compression = comp
	c.codec = codec
	if comp == format.CompressionNone {
		c.codec = nil
	}

	return nil
}

// LogOption represents a functional option for configuring a Log.
type LogOption = options.Option[*LogConfig]

// WithLogger sets the logger used to report file events and write failures.
// A nil logger keeps the default no-op logger.
func WithLogger(logger *zap.Logger) LogOption {
	return options.NoError(func(c *LogConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithBufferSize sets the size of the write buffer in front of the capture file.
// Rows stay in the buffer until it fills up or the log is flushed, stopped or rotated.
func WithBufferSize(size int) LogOption {
	return options.New(func(c *LogConfig) error {
		if size <= 0 {
			return fmt.Errorf("%w: must be positive, got %d", errs.ErrInvalidBufferSize, size)
		}
		c.bufferSize = size

		return nil
	})
}

// WithArchiveCompression compresses every capture file once it is closed, replacing
// "<name>.cap" by "<name>.cap<ext>". format.CompressionNone, the default, disables archiving.
func WithArchiveCompression(comp format.CompressionType) LogOption {
	return options.New(func(c *LogConfig) error {
		return c.setArchiveCompression(comp)
	})
}

// ManagerConfig holds the configuration of a Manager.
type ManagerConfig struct {
	logger         *zap.Logger
	clock          clock.Clock
	maxLogDuration time.Duration
}

func newManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		logger:         zap.NewNop(),
		clock:          clock.New(),
		maxLogDuration: DefaultMaxLogDuration,
	}
}

// ManagerOption represents a functional option for configuring a Manager.
type ManagerOption = options.Option[*ManagerConfig]

// WithManagerLogger sets the logger used for lifecycle and rotation events.
func WithManagerLogger(logger *zap.Logger) ManagerOption {
	return options.NoError(func(c *ManagerConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithClock sets the time source used to name capture directories and to decide rotation.
// Tests pass a clock.Mock.
func WithClock(clk clock.Clock) ManagerOption {
	return options.NoError(func(c *ManagerConfig) {
		if clk != nil {
			c.clock = clk
		}
	})
}

// WithMaxLogDuration sets the rotation interval.
func WithMaxLogDuration(d time.Duration) ManagerOption {
	return options.New(func(c *ManagerConfig) error {
		if d <= 0 {
			return fmt.Errorf("%w: %s", errs.ErrInvalidDuration, d)
		}
		c.maxLogDuration = d

		return nil
	})
}
