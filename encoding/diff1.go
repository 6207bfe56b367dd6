package encoding

import (
	"fmt"
	"io"
	"math/bits"
	"slices"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/format"
)

// Diff1MaskSize returns the number of mask bytes of a DIFF1 row of n bytes.
func Diff1MaskSize(n int) int {
	return (n + 7) / 8
}

// Diff1PayloadSize returns the number of delta bytes following mask.
func Diff1PayloadSize(mask []byte) int {
	total := 0
	for _, b := range mask {
		total += bits.OnesCount8(b)
	}

	return total
}

// AppendDiff1 appends the DIFF1 encoding of row relative to prev to dst and copies row
// into prev.
//
// Parameters:
//   - dst: Buffer to append to
//   - row: Current row
//   - prev: Previous row, same length as row; updated to row on return
//
// Returns:
//   - []byte: dst extended by the mask and the non-zero deltas
func AppendDiff1(dst, row, prev []byte) []byte {
	maskSize := Diff1MaskSize(len(row))
	maskStart := len(dst)

	dst = slices.Grow(dst, maskSize+len(row))
	dst = dst[:maskStart+maskSize]
	clear(dst[maskStart:])

	for i, b := range row {
		delta := b - prev[i]
		if delta == 0 {
			continue
		}
		dst[maskStart+i>>3] |= 1 << (i & 7)
		dst = append(dst, delta)
	}
	copy(prev, row)

	return dst
}

// DecodeDiff1 applies one DIFF1 row, given as its mask and deltas, to row.
//
// row holds the previous row on entry and the decoded row on return. It is left unchanged
// when an error is returned.
//
// Returns:
//   - error: errs.ErrCorruptedRow when the mask does not fit the row or the number of
//     deltas does not match the mask
func DecodeDiff1(mask, deltas, row []byte) error {
	if err := checkDiff1Mask(mask, len(row)); err != nil {
		return err
	}
	if want := Diff1PayloadSize(mask); want != len(deltas) {
		return fmt.Errorf("%w: mask announces %d deltas, got %d", errs.ErrCorruptedRow, want, len(deltas))
	}

	next := 0
	for i, m := range mask {
		for m != 0 {
			bit := bits.TrailingZeros8(m)
			row[i<<3+bit] += deltas[next]
			next++
			m &= m - 1
		}
	}

	return nil
}

func checkDiff1Mask(mask []byte, n int) error {
	if len(mask) != Diff1MaskSize(n) {
		return fmt.Errorf("%w: mask of %d bytes for a %d byte row", errs.ErrCorruptedRow, len(mask), n)
	}
	if rem := n & 7; rem != 0 && mask[len(mask)-1]>>rem != 0 {
		return fmt.Errorf("%w: mask bits set past byte %d", errs.ErrCorruptedRow, n)
	}

	return nil
}

// Diff1Encoder writes rows as a changed-byte mask plus changed-byte deltas.
type Diff1Encoder struct{}

var _ RowEncoder = Diff1Encoder{}

// Encoding returns format.RowDiff1.
func (Diff1Encoder) Encoding() format.RowEncoding {
	return format.RowDiff1
}

// Append appends the DIFF1 encoding of row relative to prev. See AppendDiff1.
func (Diff1Encoder) Append(dst, row, prev []byte) []byte {
	return AppendDiff1(dst, row, prev)
}

// Diff1Decoder reads DIFF1 rows of a fixed decoded size.
type Diff1Decoder struct {
	mask   []byte
	deltas []byte
}

var _ RowDecoder = (*Diff1Decoder)(nil)

// NewDiff1Decoder creates a decoder for rows of rowSize decoded bytes.
func NewDiff1Decoder(rowSize int) *Diff1Decoder {
	return &Diff1Decoder{
		mask:   make([]byte, Diff1MaskSize(rowSize)),
		deltas: make([]byte, 0, rowSize),
	}
}

// Encoding returns format.RowDiff1.
func (d *Diff1Decoder) Encoding() format.RowEncoding {
	return format.RowDiff1
}

// Decode reads one DIFF1 row from r and applies it to row.
func (d *Diff1Decoder) Decode(r io.Reader, row []byte) error {
	if len(d.mask) != Diff1MaskSize(len(row)) {
		return fmt.Errorf("%w: decoder built for %d mask bytes, row needs %d",
			errs.ErrCorruptedRow, len(d.mask), Diff1MaskSize(len(row)))
	}
	if len(row) == 0 {
		return io.EOF
	}

	if err := readFull(r, d.mask, false); err != nil {
		return err
	}
	if err := checkDiff1Mask(d.mask, len(row)); err != nil {
		return err
	}

	d.deltas = d.deltas[:Diff1PayloadSize(d.mask)]
	if err := readFull(r, d.deltas, true); err != nil {
		return err
	}

	return DecodeDiff1(d.mask, d.deltas, row)
}
