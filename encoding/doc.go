// Package encoding implements the row encodings of capture files.
//
// A row is the concatenation of the bytes of every condensed span of a log, sampled at one
// instant. Rows have a fixed size N for the lifetime of a file. Two encodings exist:
//
//   - RAW writes the N bytes of every row verbatim. Rows can be located by offset.
//   - DIFF1 writes a bitmask of ceil(N/8) bytes followed by the byte-wise difference
//     between the row and its predecessor, keeping only the non-zero differences.
//
// # DIFF1 Layout
//
// For byte i of the row, bit i%8 of mask byte i/8 is set when row[i] differs from the
// previous row. The set bits are then followed, in byte order, by one delta per set bit:
//
//	delta[i] = row[i] - prev[i]   (mod 256)
//
// An unchanged byte costs one bit and a changed byte one bit plus one byte. The previous
// row of the first row in a file is all zeros, so the first DIFF1 row carries every
// non-zero byte of the sampled state. Decoding adds each delta (mod 256) to the previous
// row and must therefore start at the first row of a file.
//
// # Usage
//
//	enc, err := encoding.NewRowEncoder(format.RowDiff1)
//	if err != nil {
//		return err
//	}
//	prev := make([]byte, rowSize)
//	out = enc.Append(out[:0], row, prev) // prev now equals row
//
// The encoders are stateless; the previous row is owned by the caller. Decoders keep
// scratch space and are not safe for concurrent use.
package encoding
