package capfile

import (
	"fmt"
	"math"

	"github.com/arloliu/caplog/endian"
	"github.com/arloliu/caplog/entry"
	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/section"
)

// Field is the position of one recorded entry inside a decoded row.
type Field struct {
	// Name is the dotted entry path; record members are named "<record>[<i>].<field>".
	Name string
	// Desc is the entry description from the header.
	Desc string
	// Type is the fundamental type label, such as "int32".
	Type string
	// Count is the number of elements.
	Count int
	// Offset is the position of the first element in the row.
	Offset int
	// ElemSize is the size in bytes of one element.
	ElemSize int
}

// Size returns the number of row bytes occupied by the field.
func (f Field) Size() int {
	return f.ElemSize * f.Count
}

// Bytes returns the bytes of the field in row.
func (f Field) Bytes(row []byte) []byte {
	return row[f.Offset : f.Offset+f.Size()]
}

// Values decodes the elements of the field from row.
//
// Parameters:
//   - engine: Byte order of the recording host
//   - row: Decoded row
//
// Returns:
//   - []any: Count values of the Go type matching Type (bool, int8..int64, uint8..uint64,
//     float32, float64)
func (f Field) Values(engine endian.EndianEngine, row []byte) []any {
	b := f.Bytes(row)
	values := make([]any, f.Count)
	for i := range values {
		values[i] = decodeValue(engine, f.Type, b[i*f.ElemSize:(i+1)*f.ElemSize])
	}

	return values
}

func decodeValue(engine endian.EndianEngine, label string, b []byte) any {
	switch label {
	case "bool":
		return b[0] != 0
	case "int8":
		return int8(b[0]) //nolint: gosec
	case "uint8":
		return b[0]
	case "int16":
		return int16(engine.Uint16(b)) //nolint: gosec
	case "uint16":
		return engine.Uint16(b)
	case "int32":
		return int32(engine.Uint32(b)) //nolint: gosec
	case "uint32":
		return engine.Uint32(b)
	case "float32":
		return math.Float32frombits(engine.Uint32(b))
	case "int64":
		return int64(engine.Uint64(b)) //nolint: gosec
	case "uint64":
		return engine.Uint64(b)
	default:
		return math.Float64frombits(engine.Uint64(b))
	}
}

// buildLayout walks the header descriptors in row order and assigns row offsets.
// The resulting layout must cover exactly rowSize bytes.
func buildLayout(descriptors []section.Descriptor, rowSize int) ([]Field, error) {
	fields := make([]Field, 0, len(descriptors))
	offset := 0

	for _, d := range descriptors {
		switch {
		case d.IsGroup():
			continue
		case d.IsRecord():
			members, err := recordMembers(d)
			if err != nil {
				return nil, err
			}
			for i := range d.Count {
				for _, m := range members {
					m.Name = fmt.Sprintf("%s[%d].%s", d.Name, i, m.Name)
					m.Offset = offset
					offset += m.Size()
					fields = append(fields, m)
				}
			}
		default:
			f, err := fundamentalField(d)
			if err != nil {
				return nil, err
			}
			f.Offset = offset
			offset += f.Size()
			fields = append(fields, f)
		}
	}

	if offset != rowSize {
		return nil, fmt.Errorf("%w: entries cover %d bytes, row size is %d", errs.ErrInvalidHeader, offset, rowSize)
	}

	return fields, nil
}

func recordMembers(d section.Descriptor) ([]Field, error) {
	members := make([]Field, 0, len(d.Fields))
	for _, fd := range d.Fields {
		if fd.IsGroup() || fd.IsRecord() {
			return nil, fmt.Errorf("%w: record %q has non-fundamental field %q", errs.ErrInvalidHeader, d.Name, fd.Name)
		}
		f, err := fundamentalField(fd)
		if err != nil {
			return nil, err
		}
		members = append(members, f)
	}

	return members, nil
}

func fundamentalField(d section.Descriptor) (Field, error) {
	size := entry.LabelSize(d.Type)
	if size == 0 {
		return Field{}, fmt.Errorf("%w: %q has unknown type %q", errs.ErrInvalidHeader, d.Name, d.Type)
	}

	return Field{Name: d.Name, Desc: d.Desc, Type: d.Type, Count: d.Count, ElemSize: size}, nil
}
