// Package compress provides the codecs used to archive closed capture files.
//
// A capture log writes its rows uncompressed so that a crash loses at most the bytes
// still sitting in the write buffer. Once a file is closed (on Stop or on rotation) it can
// optionally be compressed as a whole and replaced by "<name>.cap<ext>", where ext is the
// format.CompressionType extension (".zst", ".s2" or ".lz4").
//
// # Choosing a codec
//
//   - Zstd: best ratio, the default choice for long-term retention of capture directories.
//   - S2: very fast, moderate ratio, good for hosts with little spare CPU.
//   - LZ4: fastest decompression, useful when captures are replayed often.
//   - None: leaves files untouched.
//
// DIFF1 encoded captures are already sparse, so the gain from archiving them is smaller
// than for RAW captures, where consecutive rows are mostly identical.
//
// # Usage
//
//	codec, err := compress.CreateCodec(format.CompressionZstd, "archive")
//	if err != nil {
//		return err
//	}
//	packed, err := codec.Compress(fileBytes)
//
// # Build tags
//
// The Zstandard codec is implemented with github.com/klauspost/compress/zstd. Building
// with the "gozstd" tag switches it to the cgo binding github.com/valyala/gozstd.
//
// All codecs are stateless values and safe for concurrent use.
package compress
