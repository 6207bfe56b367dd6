package entry

import (
	"cmp"
	"slices"
	"unsafe"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/internal/collision"
	"github.com/arloliu/caplog/section"
	"github.com/arloliu/caplog/span"
)

// Field binds one member of the host struct S to a name.
//
// Fields are created with Member, MemberArray or FieldAt and passed to Record or Struct.
type Field[S any] struct {
	name     string
	desc     string
	label    string
	elemSize int
	count    int
	locate   func(rec *S) unsafe.Pointer

	// countFrom replaces count for members whose length is read from the record.
	countFrom func(rec *S) int
}

// Member binds the fundamental member returned by get.
//
// get is called once, on the first record, to find the member's offset:
//
//	entry.Member("speed", "m/s", func(m *motor) *float32 { return &m.Speed })
func Member[S any, T Fundamental](name, desc string, get func(rec *S) *T) Field[S] {
	var zero T

	return Field[S]{
		name:     name,
		desc:     desc,
		label:    TypeLabel[T](),
		elemSize: int(unsafe.Sizeof(zero)),
		count:    1,
		locate: func(rec *S) unsafe.Pointer {
			return unsafe.Pointer(get(rec))
		},
	}
}

// MemberArray binds the fundamental array member returned by get, as a slice of the array:
//
//	entry.MemberArray("adc", "raw counts", func(m *motor) []uint16 { return m.ADC[:] })
//
// The slice must lie inside the record; slices backed by other memory are rejected.
func MemberArray[S any, T Fundamental](name, desc string, get func(rec *S) []T) Field[S] {
	var zero T

	return Field[S]{
		name:     name,
		desc:     desc,
		label:    TypeLabel[T](),
		elemSize: int(unsafe.Sizeof(zero)),
		locate: func(rec *S) unsafe.Pointer {
			return unsafe.Pointer(unsafe.SliceData(get(rec)))
		},
		countFrom: func(rec *S) int {
			return len(get(rec))
		},
	}
}

// FieldAt binds count elements of type T starting offset bytes into S. It describes members
// that cannot be reached through an accessor, such as padding or unexported fields of
// another package:
//
//	entry.FieldAt[motor, uint8]("pad", "padding", unsafe.Offsetof(motor{}.pad), 3)
func FieldAt[S any, T Fundamental](name, desc string, offset uintptr, count int) Field[S] {
	var zero T

	return Field[S]{
		name:     name,
		desc:     desc,
		label:    TypeLabel[T](),
		elemSize: int(unsafe.Sizeof(zero)),
		count:    count,
		locate: func(rec *S) unsafe.Pointer {
			return unsafe.Add(unsafe.Pointer(rec), offset)
		},
	}
}

type boundField struct {
	entry  *Entry
	offset uintptr
	size   int
}

// Record creates an entry recording every struct in records.
//
// The fields must cover every byte of S exactly once. Their offsets are taken from the
// first record and replicated over the others; the resulting spans are condensed, so a
// fully declared struct slice is recorded with a single copy per row.
//
// Parameters:
//   - name: Entry name
//   - desc: Free-form description written to the header
//   - records: Host structs, which must stay valid for the life of the log
//   - fields: Field bindings in declaration order
//
// Returns:
//   - *Entry: Contiguous entry of type section.RecordType with one child per field
//   - error: errs.ErrInvalidName, errs.ErrDuplicateName, errs.ErrInvalidSpan or
//     errs.ErrLayoutMismatch
func Record[S any](name, desc string, records []S, fields ...Field[S]) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, describe(err, name, desc, "invalid record name")
	}
	if len(records) == 0 {
		return nil, describe(errs.ErrInvalidSpan, name, desc, "no records")
	}

	recSize := int(unsafe.Sizeof(records[0]))
	if recSize == 0 {
		return nil, describe(errs.ErrInvalidSpan, name, desc, "zero-sized record type")
	}

	bound, err := bindFields(name, desc, &records[0], recSize, fields)
	if err != nil {
		return nil, err
	}

	children := make([]*Entry, 0, len(bound))
	for _, f := range bound {
		children = append(children, f.entry)
	}

	spans := make([]span.Span, 0, len(records)*len(bound))
	base := unsafe.Pointer(unsafe.SliceData(records))
	for i := range records {
		recOffset := uintptr(i * recSize)
		for _, f := range bound {
			spans = append(spans, span.At(base, recOffset+f.offset, f.size))
		}
	}

	return &Entry{
		name:       name,
		desc:       desc,
		typeLabel:  section.RecordType,
		typeSize:   recSize,
		count:      len(records),
		contiguous: true,
		spans:      span.Condense(spans),
		children:   children,
	}, nil
}

// Struct creates an entry recording the single struct pointed to by p. It is Record over a
// one element slice.
func Struct[S any](name, desc string, p *S, fields ...Field[S]) (*Entry, error) {
	if p == nil {
		if err := ValidateName(name); err != nil {
			return nil, describe(err, name, desc, "invalid record name")
		}

		return nil, describe(errs.ErrInvalidSpan, name, desc, "nil pointer")
	}

	return Record(name, desc, unsafe.Slice(p, 1), fields...)
}

// bindFields resolves the offset of every field on rec, checks the layout and returns the
// fields ordered by offset.
func bindFields[S any](name, desc string, rec *S, recSize int, fields []Field[S]) ([]boundField, error) {
	tracker := collision.NewTracker(len(fields))
	base := uintptr(unsafe.Pointer(rec))
	bound := make([]boundField, 0, len(fields))
	total := 0

	for i, f := range fields {
		if err := ValidateName(f.name); err != nil {
			return nil, describe(err, name, desc, "field %d", i)
		}
		if _, err := tracker.Track(f.name); err != nil {
			return nil, describe(err, name, desc, "field %d", i)
		}

		count := f.count
		if f.countFrom != nil {
			count = f.countFrom(rec)
		}
		if count <= 0 || f.elemSize == 0 {
			return nil, describe(errs.ErrInvalidSpan, name, desc, "field %q covers no memory", f.name)
		}

		p := f.locate(rec)
		size := f.elemSize * count
		if p == nil || uintptr(p) < base || uintptr(p)+uintptr(size) > base+uintptr(recSize) {
			return nil, describe(errs.ErrLayoutMismatch, name, desc,
				"field %q (%d bytes) does not lie within the %d byte record", f.name, size, recSize)
		}

		offset := uintptr(p) - base
		bound = append(bound, boundField{
			entry: &Entry{
				name:        f.name,
				desc:        f.desc,
				typeLabel:   f.label,
				typeSize:    f.elemSize,
				count:       count,
				contiguous:  true,
				spans:       []span.Span{span.At(unsafe.Pointer(rec), offset, size)},
				parentIndex: i,
			},
			offset: offset,
			size:   size,
		})
		total += size
	}

	if total != recSize {
		return nil, describe(errs.ErrLayoutMismatch, name, desc,
			"size mismatch. record size is %d, total field size is %d; "+
				"likely due to struct padding or the field list is out of sync with the struct", recSize, total)
	}

	slices.SortStableFunc(bound, func(a, b boundField) int {
		return cmp.Compare(a.offset, b.offset)
	})
	for i := 1; i < len(bound); i++ {
		prev := bound[i-1]
		if prev.offset+uintptr(prev.size) > bound[i].offset {
			return nil, describe(errs.ErrLayoutMismatch, name, desc,
				"fields %q and %q overlap", prev.entry.name, bound[i].entry.name)
		}
	}

	return bound, nil
}
