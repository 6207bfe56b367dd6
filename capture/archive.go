package capture

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/arloliu/caplog/compress"
	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/internal/pool"
)

// archive compresses the closed capture file at path into path+extension and removes the
// original. The original is kept when any step fails.
func (l *Log) archive(path string) error {
	buf := pool.GetArchiveBuffer()
	defer pool.PutArchiveBuffer(buf)

	if err := readInto(buf, path); err != nil {
		return fmt.Errorf("%w: log %s: archive %s: %w", errs.ErrIO, l.name, path, err)
	}

	packed, stats, err := compress.CompressWithStats(l.cfg.codec, l.cfg.compression, buf.Bytes())
	if err != nil {
		return fmt.Errorf("%w: log %s: archive %s: %w", errs.ErrIO, l.name, path, err)
	}

	dst := path + l.cfg.compression.Extension()
	if err := os.WriteFile(dst, packed, 0o644); err != nil {
		return fmt.Errorf("%w: log %s: archive %s: %w", errs.ErrIO, l.name, path, err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: log %s: remove archived %s: %w", errs.ErrIO, l.name, path, err)
	}

	l.cfg.logger.Debug("capture file archived",
		zap.String("log", l.name),
		zap.String("path", dst),
		zap.Stringer("compression", stats.Algorithm),
		zap.Int64("original_size", stats.OriginalSize),
		zap.Int64("compressed_size", stats.CompressedSize),
		zap.Float64("space_savings", stats.SpaceSavings()),
		zap.Duration("duration", stats.Duration),
	)

	return nil
}

func readInto(buf *pool.ByteBuffer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		buf.Grow(int(info.Size()))
	}
	_, err = io.Copy(buf, f)

	return err
}
