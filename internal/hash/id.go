package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Schema computes the fingerprint of a serialized capture header.
// The terminating NUL byte, when present, is not part of the fingerprint so that
// a header read back from a file hashes to the same value as the one written.
func Schema(header []byte) uint64 {
	if n := len(header); n > 0 && header[n-1] == 0 {
		header = header[:n-1]
	}

	return xxhash.Sum64(header)
}
