package capture

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arloliu/caplog/encoding"
	"github.com/arloliu/caplog/entry"
	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/format"
	"github.com/arloliu/caplog/internal/hash"
	"github.com/arloliu/caplog/internal/options"
	"github.com/arloliu/caplog/internal/pool"
	"github.com/arloliu/caplog/section"
	"github.com/arloliu/caplog/span"
)

// Stats are cumulative counters of a Log since its construction.
type Stats struct {
	// Rows is the number of rows accepted by the file writer. Failed writes and the empty
	// rows of a log without spans are not counted.
	Rows uint64
	// Bytes is the number of encoded row bytes handed to the file writer, headers excluded.
	Bytes uint64
	// Files is the number of capture files opened.
	Files uint64
}

// Log records the memory described by an entry tree into one capture file at a time.
//
// A Log is built once. Its header, row layout and row encoding never change afterwards.
// Start opens a file and enables recording, Stop closes it; Record is a no-op while the
// log is stopped.
//
// Record and RecordRow must be called from one goroutine at a time and must not run
// concurrently with Start or Stop of the same log. IsRecording, Stats and the accessors of
// immutable state may be called from any goroutine.
type Log struct {
	cfg *LogConfig

	name     string
	desc     string
	method   format.RowEncoding
	root     *entry.Entry
	entries  []*entry.Entry
	header   []byte // JSON text plus terminator
	schemaID uint64
	spans    []span.Span
	rowSize  int

	prev []byte // previous row, zeroed on every Start
	row  []byte // sampled row
	out  *pool.ByteBuffer

	enc    encoding.RowEncoder
	active recorder

	file *os.File
	w    *bufio.Writer
	path string
	err  error

	recording atomic.Bool
	rows      atomic.Uint64
	bytes     atomic.Uint64
	files     atomic.Uint64
}

// NewLog builds a log named name whose root groups children.
//
// The children are flattened, sorted and their spans condensed; the header is generated
// once. Entry names are prefixed with the log name, so a child "speed" of log "motor" is
// described as "motor.speed".
//
// Parameters:
//   - name: Log name, also the capture file name without extension
//   - desc: Free-form description of the log
//   - method: Row encoding (format.RowRaw or format.RowDiff1)
//   - children: Top level entries
//   - opts: Optional configuration
//
// Returns:
//   - *Log: Stopped log
//   - error: Entry validation errors, errs.ErrInvalidRowEncoding or option errors
func NewLog(name, desc string, method format.RowEncoding, children []*entry.Entry, opts ...LogOption) (*Log, error) {
	cfg := newLogConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	enc, err := encoding.NewRowEncoder(method)
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", name, err)
	}

	root, err := entry.Group(name, desc, children...)
	if err != nil {
		return nil, err
	}

	entries := entry.Flatten(root)
	entry.Sort(entries)
	spans := entry.CollectSpans(entries)
	rowSize := span.TotalLen(spans)

	h, err := section.NewHeader(method, entry.Descriptors(entries), rowSize)
	if err != nil {
		return nil, err
	}
	header, err := h.Bytes()
	if err != nil {
		return nil, err
	}

	return &Log{
		cfg:      cfg,
		name:     name,
		desc:     desc,
		method:   method,
		root:     root,
		entries:  entries,
		header:   header,
		schemaID: hash.Schema(header),
		spans:    spans,
		rowSize:  rowSize,
		prev:     make([]byte, rowSize),
		row:      make([]byte, rowSize),
		enc:      enc,
		active:   recordNull,
	}, nil
}

// Start opens "<dir>/<name>.cap", writes the header and enables recording.
//
// The file is truncated if it exists and the previous row is reset to zeros. When the log
// is already recording into another file, the new file is opened first and the previous
// one is then flushed, closed and archived; failures on the previous file are logged and
// do not fail Start.
//
// Returns:
//   - error: errs.ErrEmptyDirectory when dir is empty, errs.ErrIO when the file cannot
//     be created or the header cannot be written
func (l *Log) Start(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: log %s", errs.ErrEmptyDirectory, l.name)
	}

	path := filepath.Join(dir, l.name+FileExtension)
	if l.file != nil && l.path == path {
		// Reopening the same path would truncate the file under the old writer.
		l.active = recordNull
		l.recording.Store(false)
		if err := l.closeCurrent(false); err != nil {
			l.cfg.logger.Warn("failed to close capture file", zap.String("log", l.name), zap.Error(err))
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: log %s: %w", errs.ErrIO, l.name, err)
	}
	w := bufio.NewWriterSize(f, l.cfg.bufferSize)
	if _, err := w.Write(l.header); err != nil {
		return multierr.Combine(fmt.Errorf("%w: log %s: write header: %w", errs.ErrIO, l.name, err), f.Close())
	}

	prevFile, prevW, prevPath := l.file, l.w, l.path
	l.file, l.w, l.path = f, w, path
	l.err = nil
	clear(l.prev)
	if l.out == nil {
		l.out = pool.GetRowBuffer()
	}
	l.active = (*Log).recordEncoded
	l.recording.Store(true)
	l.files.Add(1)

	l.cfg.logger.Debug("capture file opened",
		zap.String("log", l.name),
		zap.String("path", path),
		zap.Int("row_size", l.rowSize),
		zap.Stringer("encoding", l.method),
		zap.Uint64("schema_id", l.schemaID),
	)

	if prevFile != nil {
		if err := l.closeFile(prevW, prevFile, prevPath, true); err != nil {
			l.cfg.logger.Error("failed to close previous capture file",
				zap.String("log", l.name), zap.String("path", prevPath), zap.Error(err))
		}
	}

	return nil
}

// Stop disables recording, then flushes, closes and archives the current file.
// Stopping a stopped log is a no-op.
func (l *Log) Stop() error {
	l.active = recordNull
	l.recording.Store(false)

	if l.out != nil {
		pool.PutRowBuffer(l.out)
		l.out = nil
	}

	return l.closeCurrent(true)
}

func (l *Log) closeCurrent(archive bool) error {
	if l.file == nil {
		return nil
	}

	f, w, path := l.file, l.w, l.path
	l.file, l.w = nil, nil

	return l.closeFile(w, f, path, archive)
}

func (l *Log) closeFile(w *bufio.Writer, f *os.File, path string, archive bool) error {
	err := multierr.Combine(w.Flush(), f.Close())
	if err != nil {
		return fmt.Errorf("%w: log %s: close %s: %w", errs.ErrIO, l.name, path, err)
	}

	l.cfg.logger.Debug("capture file closed", zap.String("log", l.name), zap.String("path", path))

	if archive && l.cfg.codec != nil {
		return l.archive(path)
	}

	return nil
}

// Record samples every span of the log and writes one row with the selected encoding.
//
// Record never fails: it returns the number of bytes handed to the file writer, 0 when
// the log is stopped or a previous write failed (see Err).
func (l *Log) Record() int {
	return l.active(l, nil)
}

// RecordRow writes row, a caller-assembled row of RowSize bytes, with the selected
// encoding. A row of any other size is rejected by returning 0 without writing anything.
func (l *Log) RecordRow(row []byte) int {
	if len(row) != l.rowSize {
		return 0
	}

	return l.active(l, row)
}

// Flush writes buffered rows to the file.
func (l *Log) Flush() error {
	if l.w == nil {
		return nil
	}
	if err := l.w.Flush(); err != nil {
		l.fail(err)
		return l.err
	}

	return nil
}

// Err returns the first write error of the current file, or nil. It is reset by Start.
func (l *Log) Err() error {
	return l.err
}

func (l *Log) fail(err error) {
	if l.err != nil {
		return
	}

	l.err = fmt.Errorf("%w: log %s: write %s: %w", errs.ErrIO, l.name, l.path, err)
	l.cfg.logger.Error("capture write failed, recording suspended until next start",
		zap.String("log", l.name), zap.String("path", l.path), zap.Error(err))
}

// IsRecording reports whether the log has an open file. It is safe for concurrent use.
func (l *Log) IsRecording() bool {
	return l.recording.Load()
}

// Stats returns the cumulative counters of the log. It is safe for concurrent use.
func (l *Log) Stats() Stats {
	return Stats{
		Rows:  l.rows.Load(),
		Bytes: l.bytes.Load(),
		Files: l.files.Load(),
	}
}

// Name returns the log name.
func (l *Log) Name() string {
	return l.name
}

// Description returns the log description.
func (l *Log) Description() string {
	return l.desc
}

// Encoding returns the row encoding selected at construction.
func (l *Log) Encoding() format.RowEncoding {
	return l.method
}

// Header returns the JSON header text, without the terminator byte written after it.
func (l *Log) Header() string {
	return string(l.header[:len(l.header)-1])
}

// SchemaID returns the xxHash64 fingerprint of the header text. Logs with equal schema
// IDs produce files with identical layouts.
func (l *Log) SchemaID() uint64 {
	return l.schemaID
}

// RowSize returns the size in bytes of one decoded row.
func (l *Log) RowSize() int {
	return l.rowSize
}

// Spans returns a copy of the condensed spans, in row order.
func (l *Log) Spans() []span.Span {
	return slices.Clone(l.spans)
}

// Entries returns the flattened entries in row order, named by their dotted path.
func (l *Log) Entries() []*entry.Entry {
	return slices.Clone(l.entries)
}

// Root returns the root group of the log.
func (l *Log) Root() *entry.Entry {
	return l.root
}

// Path returns the path of the file the log writes to, or of the last file it wrote to
// when stopped. It is empty before the first Start.
func (l *Log) Path() string {
	return l.path
}
