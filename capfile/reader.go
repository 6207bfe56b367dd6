package capfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/arloliu/caplog/compress"
	"github.com/arloliu/caplog/encoding"
	"github.com/arloliu/caplog/endian"
	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/format"
	"github.com/arloliu/caplog/internal/hash"
	"github.com/arloliu/caplog/internal/options"
	"github.com/arloliu/caplog/section"
)

// Reading is the decoded value of one field in one row.
type Reading struct {
	Field  Field
	Values []any
}

// Reader decodes the rows of one capture file sequentially.
type Reader struct {
	cfg    *ReaderConfig
	src    *bufio.Reader
	closer io.Closer

	header   *section.Header
	text     []byte
	schemaID uint64
	fields   []Field
	index    map[string]int

	decoder encoding.RowDecoder
	row     []byte
	rows    int
	err     error
}

// NewReader reads the header from r and prepares row decoding.
//
// Parameters:
//   - r: Capture stream positioned at the start of the header
//   - opts: Optional configuration
//
// Returns:
//   - *Reader: Reader positioned at the first row
//   - error: errs.ErrInvalidHeader when the header is malformed or does not describe its rows
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	cfg := newReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	src := bufio.NewReaderSize(r, cfg.bufferSize)
	header, text, err := section.ReadHeader(src)
	if err != nil {
		return nil, err
	}

	fields, err := buildLayout(header.DataHeader, header.RowSize)
	if err != nil {
		return nil, err
	}

	decoder, err := encoding.NewRowDecoder(header.Compression, header.RowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidHeader, err)
	}

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}

	return &Reader{
		cfg:      cfg,
		src:      src,
		header:   header,
		text:     text,
		schemaID: hash.Schema(text),
		fields:   fields,
		index:    index,
		decoder:  decoder,
		row:      make([]byte, header.RowSize),
	}, nil
}

// Open opens the capture file at path. Archived files, recognized by their ".zst", ".s2" or
// ".lz4" extension, are decompressed in memory first.
//
// The returned Reader must be closed.
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	if comp, ok := format.CompressionFromExtension(filepath.Ext(path)); ok {
		return openArchive(path, comp, opts...)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	r, err := NewReader(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f

	return r, nil
}

func openArchive(path string, comp format.CompressionType, opts ...ReaderOption) (*Reader, error) {
	packed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	codec, err := compress.GetCodec(comp)
	if err != nil {
		return nil, err
	}
	data, err := codec.Decompress(packed)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s: %w", errs.ErrIO, path, err)
	}

	r, err := NewReader(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return r, nil
}

// Close closes the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}

	err := r.closer.Close()
	r.closer = nil

	return err
}

// Header returns the decoded header.
func (r *Reader) Header() *section.Header {
	return r.header
}

// HeaderText returns the header JSON text as stored in the file, without the terminator.
func (r *Reader) HeaderText() string {
	return string(r.text)
}

// SchemaID returns the fingerprint of the header text. It equals the SchemaID of the log
// that wrote the file.
func (r *Reader) SchemaID() uint64 {
	return r.schemaID
}

// Encoding returns the row encoding of the file.
func (r *Reader) Encoding() format.RowEncoding {
	return r.header.Compression
}

// RowSize returns the size of a decoded row.
func (r *Reader) RowSize() int {
	return r.header.RowSize
}

// Fields returns the row layout, in row order.
func (r *Reader) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)

	return out
}

// Lookup returns the field named name.
func (r *Reader) Lookup(name string) (Field, bool) {
	i, ok := r.index[name]
	if !ok {
		return Field{}, false
	}

	return r.fields[i], true
}

// Rows returns the number of rows decoded so far.
func (r *Reader) Rows() int {
	return r.rows
}

// Next decodes the next row.
//
// The returned slice is owned by the reader and overwritten by the following call; DIFF1
// decoding also reads it back, so callers must not modify it. Copy it to retain it.
//
// Returns:
//   - []byte: Decoded row of RowSize bytes
//   - error: io.EOF after the last row, errs.ErrTruncatedRow when the file ends inside a
//     row, errs.ErrCorruptedRow on an invalid DIFF1 mask
func (r *Reader) Next() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}

	if err := r.decoder.Decode(r.src, r.row); err != nil {
		if errors.Is(err, io.EOF) {
			r.err = io.EOF
		} else {
			r.err = fmt.Errorf("row %d: %w", r.rows, err)
		}

		return nil, r.err
	}
	r.rows++

	return r.row, nil
}

// All returns a sequence of (row index, row) over the remaining rows. The row slice follows
// the rules of Next. Iteration stops at the end of the file or at the first error, which is
// then reported by Err.
//
// Example:
//
//	for i, row := range r.All() {
//	    fmt.Printf("[%d] %x\n", i, row)
//	}
func (r *Reader) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for {
			idx := r.rows
			row, err := r.Next()
			if err != nil {
				return
			}
			if !yield(idx, row) {
				return
			}
		}
	}
}

// Err returns the first error met by Next, or nil when the file was read to its end.
func (r *Reader) Err() error {
	if errors.Is(r.err, io.EOF) {
		return nil
	}

	return r.err
}

// Readings decodes every field of row.
func (r *Reader) Readings(row []byte) ([]Reading, error) {
	if len(row) != r.header.RowSize {
		return nil, fmt.Errorf("%w: row has %d bytes, expected %d", errs.ErrCorruptedRow, len(row), r.header.RowSize)
	}

	readings := make([]Reading, len(r.fields))
	for i, f := range r.fields {
		readings[i] = Reading{Field: f, Values: f.Values(r.cfg.engine, row)}
	}

	return readings, nil
}

// Value decodes the field named name from row.
//
// Returns:
//   - []any: Decoded elements, nil when no field has that name
//   - bool: Whether the field exists
func (r *Reader) Value(name string, row []byte) ([]any, bool) {
	f, ok := r.Lookup(name)
	if !ok || len(row) != r.header.RowSize {
		return nil, false
	}

	return f.Values(r.cfg.engine, row), true
}

// ByteOrder returns the byte order used to decode values.
func (r *Reader) ByteOrder() endian.EndianEngine {
	return r.cfg.engine
}
