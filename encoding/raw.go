package encoding

import (
	"io"

	"github.com/arloliu/caplog/format"
)

// RawEncoder writes rows verbatim.
type RawEncoder struct{}

var _ RowEncoder = RawEncoder{}

// Encoding returns format.RowRaw.
func (RawEncoder) Encoding() format.RowEncoding {
	return format.RowRaw
}

// Append appends row to dst. prev is kept equal to the last written row, as for DIFF1.
func (RawEncoder) Append(dst, row, prev []byte) []byte {
	copy(prev, row)

	return AppendRaw(dst, row)
}

// AppendRaw appends row to dst unchanged.
func AppendRaw(dst, row []byte) []byte {
	return append(dst, row...)
}

// RawDecoder reads fixed-size rows.
type RawDecoder struct{}

var _ RowDecoder = RawDecoder{}

// Encoding returns format.RowRaw.
func (RawDecoder) Encoding() format.RowEncoding {
	return format.RowRaw
}

// Decode reads len(row) bytes from r into row.
func (RawDecoder) Decode(r io.Reader, row []byte) error {
	if len(row) == 0 {
		return io.EOF
	}

	return readFull(r, row, false)
}
