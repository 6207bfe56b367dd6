package compress

// ZstdCompressor archives capture files with Zstandard.
//
// Capture files are dominated by repeated rows, which Zstandard compresses well even at
// its default level. Encoders and decoders are pooled, so the codec can be shared between
// logs that close their files at the same time.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd codec
//
// Example:
//
//	codec := NewZstdCompressor()
//	packed, err := codec.Compress(fileBytes)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
