package entry

import (
	"slices"
	"unsafe"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/internal/collision"
	"github.com/arloliu/caplog/section"
	"github.com/arloliu/caplog/span"
)

// Entry is an immutable node of a capture schema.
type Entry struct {
	name        string
	desc        string
	typeLabel   string
	typeSize    int // per element; for groups the summed byte size of the children
	count       int
	contiguous  bool
	spans       []span.Span
	children    []*Entry
	parentIndex int
}

// Value creates a leaf entry recording the fundamental value pointed to by p.
//
// Parameters:
//   - name: Entry name, a letter followed by letters, digits or underscores
//   - desc: Free-form description written to the header
//   - p: Pointer to the recorded value, which must stay valid for the life of the log
//
// Returns:
//   - *Entry: Leaf entry with one span of unsafe.Sizeof(*p) bytes
//   - error: errs.ErrInvalidName or errs.ErrInvalidSpan
func Value[T Fundamental](name, desc string, p *T) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, describe(err, name, desc, "invalid value name")
	}
	if p == nil {
		return nil, describe(errs.ErrInvalidSpan, name, desc, "nil pointer")
	}

	return newLeaf(name, desc, TypeLabel[T](), int(unsafe.Sizeof(*p)), 1, span.Of(p)), nil
}

// Array creates a leaf entry recording every element of s.
//
// Go arrays are recorded through a slice of the whole array, for example Array("a", "", arr[:]).
// The slice header is captured at construction: reslicing or appending to the original
// slice later does not change what is recorded.
func Array[T Fundamental](name, desc string, s []T) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, describe(err, name, desc, "invalid array name")
	}
	if len(s) == 0 {
		return nil, describe(errs.ErrInvalidSpan, name, desc, "empty array")
	}

	return newLeaf(name, desc, TypeLabel[T](), int(unsafe.Sizeof(s[0])), len(s), span.OfSlice(s)), nil
}

func newLeaf(name, desc, label string, elemSize, count int, sp span.Span) *Entry {
	return &Entry{
		name:       name,
		desc:       desc,
		typeLabel:  label,
		typeSize:   elemSize,
		count:      count,
		contiguous: true,
		spans:      []span.Span{sp},
	}
}

// Group creates a container entry that gives children a common name prefix.
//
// Children are stored in declaration order and their names must be unique. The children
// themselves are not modified: the group keeps copies that remember their position.
//
// Returns:
//   - *Entry: Non-contiguous entry without spans
//   - error: errs.ErrInvalidName, errs.ErrDuplicateName or errs.ErrNilEntry
func Group(name, desc string, children ...*Entry) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, describe(err, name, desc, "invalid group name")
	}

	tracker := collision.NewTracker(len(children))
	group := &Entry{
		name:     name,
		desc:     desc,
		count:    1,
		children: make([]*Entry, 0, len(children)),
	}
	for i, child := range children {
		if child == nil {
			return nil, describe(errs.ErrNilEntry, name, desc, "child %d is nil", i)
		}
		if _, err := tracker.Track(child.name); err != nil {
			return nil, describe(err, name, desc, "invalid child")
		}

		c := child.clone()
		c.parentIndex = i
		group.children = append(group.children, c)
		group.typeSize += child.ByteSize()
	}

	return group, nil
}

func (e *Entry) clone() *Entry {
	c := *e
	return &c
}

// Name returns the entry name. Entries returned by Flatten carry their dotted path.
func (e *Entry) Name() string {
	return e.name
}

// Description returns the entry description.
func (e *Entry) Description() string {
	return e.desc
}

// TypeLabel returns the header type label: a fundamental label, section.RecordType for
// records or section.GroupType for groups.
func (e *Entry) TypeLabel() string {
	return e.typeLabel
}

// TypeSize returns the size of one element in bytes. For groups it is the summed byte size
// of the children.
func (e *Entry) TypeSize() int {
	return e.typeSize
}

// Count returns the element multiplicity.
func (e *Entry) Count() int {
	return e.count
}

// ByteSize returns the number of bytes the entry contributes to a row.
func (e *Entry) ByteSize() int {
	if !e.contiguous {
		return e.typeSize
	}

	return e.typeSize * e.count
}

// IsContiguous reports whether the entry owns its memory as a whole. Flatten does not
// recurse into contiguous entries.
func (e *Entry) IsContiguous() bool {
	return e.contiguous
}

// IsGroup reports whether the entry is a pure container.
func (e *Entry) IsGroup() bool {
	return !e.contiguous
}

// IsRecord reports whether the entry describes host structs.
func (e *Entry) IsRecord() bool {
	return e.contiguous && len(e.children) > 0
}

// Spans returns a copy of the spans directly owned by the entry.
func (e *Entry) Spans() []span.Span {
	return slices.Clone(e.spans)
}

// Children returns the child entries. Record fields are ordered by their offset in the
// record; group children by declaration.
func (e *Entry) Children() []*Entry {
	return slices.Clone(e.children)
}

// ParentIndex returns the declaration position of the entry among its siblings.
func (e *Entry) ParentIndex() int {
	return e.parentIndex
}

// Descriptor returns the header descriptor of the entry. Records include their fields.
func (e *Entry) Descriptor() section.Descriptor {
	d := section.Descriptor{
		Name:  e.name,
		Desc:  e.desc,
		Type:  e.typeLabel,
		Count: e.count,
		Ind:   e.parentIndex,
	}
	if e.IsRecord() {
		d.Fields = make([]section.Descriptor, 0, len(e.children))
		for _, field := range e.children {
			d.Fields = append(d.Fields, field.Descriptor())
		}
	}

	return d
}
