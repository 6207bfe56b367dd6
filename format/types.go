package format

import (
	"fmt"

	"github.com/arloliu/caplog/errs"
)

type (
	RowEncoding     uint8
	CompressionType uint8
)

const (
	RowRaw   RowEncoding = 0x1 // RowRaw writes every row verbatim.
	RowDiff1 RowEncoding = 0x2 // RowDiff1 writes a changed-byte bitmask plus the changed byte deltas.

	CompressionNone CompressionType = 0x1 // CompressionNone leaves closed capture files as they are.
	CompressionZstd CompressionType = 0x2 // CompressionZstd archives closed capture files with Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 archives closed capture files with S2.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 archives closed capture files with LZ4.
)

// String returns the name written to the "compression" field of a capture header.
func (e RowEncoding) String() string {
	switch e {
	case RowRaw:
		return "RAW"
	case RowDiff1:
		return "DIFF1"
	default:
		return "Unknown"
	}
}

// Valid reports whether e is a supported row encoding.
func (e RowEncoding) Valid() bool {
	return e == RowRaw || e == RowDiff1
}

// MarshalText implements encoding.TextMarshaler so headers carry the encoding by name.
func (e RowEncoding) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: 0x%x", errs.ErrInvalidRowEncoding, uint8(e))
	}

	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *RowEncoding) UnmarshalText(text []byte) error {
	parsed, err := ParseRowEncoding(string(text))
	if err != nil {
		return err
	}
	*e = parsed

	return nil
}

// ParseRowEncoding maps a header name ("RAW", "DIFF1") back to its RowEncoding.
func ParseRowEncoding(name string) (RowEncoding, error) {
	switch name {
	case "RAW":
		return RowRaw, nil
	case "DIFF1":
		return RowDiff1, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidRowEncoding, name)
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Extension returns the file name suffix appended to archived capture files,
// including the leading dot. CompressionNone and unknown types have no suffix.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// CompressionFromExtension returns the compression type whose Extension is ext.
// Unknown suffixes report CompressionNone and false.
func CompressionFromExtension(ext string) (CompressionType, bool) {
	for _, c := range []CompressionType{CompressionZstd, CompressionS2, CompressionLZ4} {
		if c.Extension() == ext {
			return c, true
		}
	}

	return CompressionNone, false
}
