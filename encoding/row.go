package encoding

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/format"
)

// RowEncoder appends encoded rows to a buffer.
type RowEncoder interface {
	// Encoding returns the row encoding implemented by the encoder.
	Encoding() format.RowEncoding

	// Append appends the encoded form of row to dst and returns the extended buffer.
	//
	// prev holds the previous row and must have the same length as row. After Append
	// returns, prev equals row.
	Append(dst, row, prev []byte) []byte
}

// RowDecoder reads encoded rows from a stream.
type RowDecoder interface {
	// Encoding returns the row encoding implemented by the decoder.
	Encoding() format.RowEncoding

	// Decode reads one encoded row from r and applies it to row, which holds the previous
	// decoded row on entry and the new row on return.
	//
	// Decode returns io.EOF when r is exhausted at a row boundary and errs.ErrTruncatedRow
	// when r ends inside a row.
	Decode(r io.Reader, row []byte) error
}

// NewRowEncoder returns the encoder for the given row encoding.
//
// Parameters:
//   - enc: Row encoding (RowRaw or RowDiff1)
//
// Returns:
//   - RowEncoder: Stateless encoder
//   - error: errs.ErrInvalidRowEncoding for unknown encodings
func NewRowEncoder(enc format.RowEncoding) (RowEncoder, error) {
	switch enc {
	case format.RowRaw:
		return RawEncoder{}, nil
	case format.RowDiff1:
		return Diff1Encoder{}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%x", errs.ErrInvalidRowEncoding, uint8(enc))
	}
}

// NewRowDecoder returns a decoder for rows of rowSize bytes.
func NewRowDecoder(enc format.RowEncoding, rowSize int) (RowDecoder, error) {
	if rowSize < 0 {
		return nil, fmt.Errorf("%w: negative row size %d", errs.ErrCorruptedRow, rowSize)
	}

	switch enc {
	case format.RowRaw:
		return RawDecoder{}, nil
	case format.RowDiff1:
		return NewDiff1Decoder(rowSize), nil
	default:
		return nil, fmt.Errorf("%w: 0x%x", errs.ErrInvalidRowEncoding, uint8(enc))
	}
}

// readFull fills buf from r, distinguishing a clean end of stream from a partial row.
// started tells whether bytes of the current row were already consumed.
func readFull(r io.Reader, buf []byte, started bool) error {
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
		return nil
	case n == 0 && !started && errors.Is(err, io.EOF):
		return io.EOF
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: got %d of %d bytes", errs.ErrTruncatedRow, n, len(buf))
	default:
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
}
