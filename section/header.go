package section

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/format"
)

const (
	// Terminator is the byte separating the header text from the first row.
	Terminator byte = 0x00

	// MaxHeaderSize bounds the header text accepted by ReadHeader.
	MaxHeaderSize = 16 * 1024 * 1024 // 16MiB

	// GroupType is the type label of descriptors that only group other entries.
	GroupType = ""
	// RecordType is the type label of repeated composite records.
	RecordType = "struct"
)

// Descriptor describes one entry of a capture file header.
type Descriptor struct {
	// Name is the dotted path of the entry from the log root.
	Name string `json:"name"`
	// Desc is the free-form description supplied by the application.
	Desc string `json:"desc"`
	// Type is the element type label: a fundamental label, GroupType or RecordType.
	Type string `json:"type"`
	// Count is the element multiplicity.
	Count int `json:"count"`
	// Ind is the declaration position of the entry among its siblings.
	Ind int `json:"ind"`
	// Fields lists the per-record fields of a RecordType descriptor, in row order.
	Fields []Descriptor `json:"fields,omitempty"`
}

// IsGroup reports whether d owns no row bytes.
func (d Descriptor) IsGroup() bool {
	return d.Type == GroupType
}

// IsRecord reports whether d describes repeated composite records.
func (d Descriptor) IsRecord() bool {
	return d.Type == RecordType
}

// Header is the decoded form of a capture file header.
type Header struct {
	Compression format.RowEncoding `json:"compression"`
	DataHeader  []Descriptor       `json:"data_header"`
	RowSize     int                `json:"row_size"`
}

// NewHeader creates a header for rows of rowSize bytes described by descriptors.
func NewHeader(compression format.RowEncoding, descriptors []Descriptor, rowSize int) (*Header, error) {
	if !compression.Valid() {
		return nil, fmt.Errorf("%w: 0x%x", errs.ErrInvalidRowEncoding, uint8(compression))
	}
	if rowSize < 0 {
		return nil, fmt.Errorf("%w: negative row size %d", errs.ErrInvalidHeader, rowSize)
	}
	if descriptors == nil {
		descriptors = []Descriptor{}
	}

	return &Header{Compression: compression, DataHeader: descriptors, RowSize: rowSize}, nil
}

// Text returns the JSON text of the header without the terminator.
//
// The output is indented with tabs and HTML characters in descriptions are kept as is.
func (h *Header) Text() ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidHeader, err)
	}

	// Encode terminates the value with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Bytes returns the header as written to a capture file: the JSON text followed by the
// terminator byte.
func (h *Header) Bytes() ([]byte, error) {
	text, err := h.Text()
	if err != nil {
		return nil, err
	}

	return append(text, Terminator), nil
}

// Parse decodes a header from its JSON text. A single trailing terminator is accepted.
//
// Parameters:
//   - data: Header text, with or without the terminator
//
// Returns:
//   - *Header: Decoded header
//   - error: errs.ErrInvalidHeader (or errs.ErrInvalidRowEncoding) on malformed input
func Parse(data []byte) (*Header, error) {
	data = bytes.TrimSuffix(data, []byte{Terminator})

	var h Header
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidHeader, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after header", errs.ErrInvalidHeader)
	}

	if !h.Compression.Valid() {
		return nil, fmt.Errorf("%w: missing compression", errs.ErrInvalidHeader)
	}
	if h.RowSize < 0 {
		return nil, fmt.Errorf("%w: negative row size %d", errs.ErrInvalidHeader, h.RowSize)
	}
	if err := validateDescriptors(h.DataHeader); err != nil {
		return nil, err
	}

	return &h, nil
}

func validateDescriptors(descriptors []Descriptor) error {
	for _, d := range descriptors {
		if d.Name == "" {
			return fmt.Errorf("%w: descriptor without name", errs.ErrInvalidHeader)
		}
		if d.Count < 0 {
			return fmt.Errorf("%w: %q has negative count %d", errs.ErrInvalidHeader, d.Name, d.Count)
		}
		if len(d.Fields) > 0 && !d.IsRecord() {
			return fmt.Errorf("%w: %q of type %q has fields", errs.ErrInvalidHeader, d.Name, d.Type)
		}
		if err := validateDescriptors(d.Fields); err != nil {
			return err
		}
	}

	return nil
}

// ReadHeader consumes the header and its terminator from r.
//
// On success r is positioned at the first row.
//
// Returns:
//   - *Header: Decoded header
//   - []byte: Raw header text without the terminator
//   - error: errs.ErrInvalidHeader when the terminator is missing or the text is malformed
func ReadHeader(r *bufio.Reader) (*Header, []byte, error) {
	var text []byte
	for {
		chunk, err := r.ReadSlice(Terminator)
		text = append(text, chunk...)
		if len(text) > MaxHeaderSize+1 {
			return nil, nil, fmt.Errorf("%w: header exceeds %d bytes", errs.ErrInvalidHeader, MaxHeaderSize)
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: missing terminator", errs.ErrInvalidHeader)
		}

		return nil, nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	text = text[:len(text)-1]
	h, err := Parse(text)
	if err != nil {
		return nil, nil, err
	}

	return h, text, nil
}
