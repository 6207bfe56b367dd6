package compress

import (
	"fmt"
	"time"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/format"
)

// Compressor compresses a complete capture file.
type Compressor interface {
	// Compress returns the compressed form of data.
	//
	// The returned slice is owned by the caller unless the codec documents otherwise,
	// and data is never modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a capture file compressed by the matching Compressor.
type Decompressor interface {
	// Decompress returns the original bytes of data.
	//
	// An error is returned when data is corrupted or was produced by a different codec.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one archived capture file.
type CompressionStats struct {
	// Algorithm identifies the codec used
	Algorithm format.CompressionType

	// OriginalSize is the size of the capture file before compression
	OriginalSize int64

	// CompressedSize is the size of the archived file
	CompressedSize int64

	// Duration is the time spent compressing
	Duration time.Duration
}

// CompressionRatio returns the compressed size divided by the original size.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// CompressWithStats compresses data with codec and reports the sizes and elapsed time.
//
// Parameters:
//   - codec: Codec to compress with
//   - algorithm: Compression type recorded in the returned stats
//   - data: Capture file contents
//
// Returns:
//   - []byte: Compressed data
//   - CompressionStats: Sizes and duration of the operation
//   - error: Compression error if any
func CompressWithStats(codec Codec, algorithm format.CompressionType, data []byte) ([]byte, CompressionStats, error) {
	start := time.Now()
	packed, err := codec.Compress(data)
	stats := CompressionStats{
		Algorithm:      algorithm,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(packed)),
		Duration:       time.Since(start),
	}
	if err != nil {
		return nil, stats, fmt.Errorf("%s compression failed: %w", algorithm, err)
	}

	return packed, stats, nil
}

// CreateCodec creates a new Codec for the given compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of the caller, used in error messages
//
// Returns:
//   - Codec: Codec for the requested type
//   - error: errs.ErrInvalidCompression for unknown types
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s compression 0x%x", errs.ErrInvalidCompression, target, uint8(compressionType))
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported type 0x%x", errs.ErrInvalidCompression, uint8(compressionType))
}
