package entry

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/section"
)

type mode uint8

const (
	modeIdle mode = iota
	modeRun
)

type pair struct {
	A   int32
	B   int8
	Pad [3]uint8
}

func pairFields() []Field[pair] {
	return []Field[pair]{
		Member("a", "first", func(p *pair) *int32 { return &p.A }),
		Member("b", "second", func(p *pair) *int8 { return &p.B }),
		MemberArray("pad", "padding", func(p *pair) []uint8 { return p.Pad[:] }),
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"a", "A", "a1", "abc_DEF_12", "x_", "Z9_9"}
	for _, name := range valid {
		require.NoError(t, ValidateName(name), name)
	}

	invalid := []string{"", "1abc", "_x", "9", "a-b", "a b", "a.b", "é", "ab$"}
	for _, name := range invalid {
		require.ErrorIs(t, ValidateName(name), errs.ErrInvalidName, name)
	}
}

func TestTypeLabel(t *testing.T) {
	require.Equal(t, "bool", TypeLabel[bool]())
	require.Equal(t, "int8", TypeLabel[int8]())
	require.Equal(t, "int16", TypeLabel[int16]())
	require.Equal(t, "int32", TypeLabel[int32]())
	require.Equal(t, "int64", TypeLabel[int64]())
	require.Equal(t, "uint8", TypeLabel[uint8]())
	require.Equal(t, "uint16", TypeLabel[uint16]())
	require.Equal(t, "uint32", TypeLabel[uint32]())
	require.Equal(t, "uint64", TypeLabel[uint64]())
	require.Equal(t, "float32", TypeLabel[float32]())
	require.Equal(t, "float64", TypeLabel[float64]())
	require.Equal(t, "uint8", TypeLabel[mode](), "enums use their underlying type")

	if unsafe.Sizeof(int(0)) == 8 {
		require.Equal(t, "int64", TypeLabel[int]())
		require.Equal(t, "uint64", TypeLabel[uintptr]())
	} else {
		require.Equal(t, "int32", TypeLabel[int]())
		require.Equal(t, "uint32", TypeLabel[uintptr]())
	}
}

func TestLabelSize(t *testing.T) {
	require.Equal(t, 1, LabelSize("bool"))
	require.Equal(t, 2, LabelSize("int16"))
	require.Equal(t, 4, LabelSize("float32"))
	require.Equal(t, 8, LabelSize("uint64"))
	require.Equal(t, 0, LabelSize(section.RecordType))
	require.Equal(t, 0, LabelSize(section.GroupType))
}

func TestValue(t *testing.T) {
	t.Run("fundamental", func(t *testing.T) {
		var v int32 = 0x11223344
		e, err := Value("speed", "m/s", &v)
		require.NoError(t, err)

		require.Equal(t, "speed", e.Name())
		require.Equal(t, "m/s", e.Description())
		require.Equal(t, "int32", e.TypeLabel())
		require.Equal(t, 4, e.TypeSize())
		require.Equal(t, 1, e.Count())
		require.Equal(t, 4, e.ByteSize())
		require.True(t, e.IsContiguous())
		require.False(t, e.IsGroup())
		require.False(t, e.IsRecord())
		require.Len(t, e.Spans(), 1)
		require.Equal(t, uintptr(unsafe.Pointer(&v)), e.Spans()[0].Start())
		require.Empty(t, e.Children())
	})

	t.Run("enum", func(t *testing.T) {
		m := modeRun
		e, err := Value("mode", "run mode", &m)
		require.NoError(t, err)
		require.Equal(t, "uint8", e.TypeLabel())
		require.Equal(t, 1, e.ByteSize())
		require.Equal(t, []byte{byte(modeRun)}, e.Spans()[0].Bytes())
	})

	t.Run("nil pointer", func(t *testing.T) {
		_, err := Value[float64]("speed", "m/s", nil)
		require.ErrorIs(t, err, errs.ErrInvalidSpan)
		require.Contains(t, err.Error(), "name:speed")
		require.Contains(t, err.Error(), "description:m/s")
	})

	t.Run("invalid name", func(t *testing.T) {
		var v bool
		_, err := Value("2fast", "flag", &v)
		require.ErrorIs(t, err, errs.ErrInvalidName)
		require.Contains(t, err.Error(), "description:flag")
	})
}

func TestArray(t *testing.T) {
	var accel [3]float32
	e, err := Array("accel", "m/s^2", accel[:])
	require.NoError(t, err)
	require.Equal(t, "float32", e.TypeLabel())
	require.Equal(t, 4, e.TypeSize())
	require.Equal(t, 3, e.Count())
	require.Equal(t, 12, e.ByteSize())
	require.Equal(t, 12, e.Spans()[0].Len())

	_, err = Array("accel", "", []float32{})
	require.ErrorIs(t, err, errs.ErrInvalidSpan)

	_, err = Array[int16]("accel", "", nil)
	require.ErrorIs(t, err, errs.ErrInvalidSpan)
}

func TestGroup(t *testing.T) {
	var a int32
	var b [2]uint16
	ea, err := Value("a", "", &a)
	require.NoError(t, err)
	eb, err := Array("b", "", b[:])
	require.NoError(t, err)

	t.Run("computes size and positions", func(t *testing.T) {
		g, err := Group("grp", "group", eb, ea)
		require.NoError(t, err)

		require.True(t, g.IsGroup())
		require.False(t, g.IsContiguous())
		require.Equal(t, section.GroupType, g.TypeLabel())
		require.Equal(t, 8, g.TypeSize())
		require.Equal(t, 8, g.ByteSize())
		require.Equal(t, 1, g.Count())
		require.Empty(t, g.Spans())

		children := g.Children()
		require.Len(t, children, 2)
		require.Equal(t, "b", children[0].Name())
		require.Equal(t, 0, children[0].ParentIndex())
		require.Equal(t, "a", children[1].Name())
		require.Equal(t, 1, children[1].ParentIndex())

		// Children passed in are not modified.
		require.Equal(t, 0, ea.ParentIndex())
	})

	t.Run("duplicate child", func(t *testing.T) {
		var other int32
		dup, err := Value("x", "", &other)
		require.NoError(t, err)
		x, err := Value("x", "", &a)
		require.NoError(t, err)

		_, err = Group("grp", "with dup", x, dup)
		require.ErrorIs(t, err, errs.ErrDuplicateName)
		require.Contains(t, err.Error(), "name:grp")
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		var other int32
		upper, err := Value("A", "", &other)
		require.NoError(t, err)

		_, err = Group("grp", "", ea, upper)
		require.NoError(t, err)
	})

	t.Run("nil child", func(t *testing.T) {
		_, err := Group("grp", "", ea, nil)
		require.ErrorIs(t, err, errs.ErrNilEntry)
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := Group("", "", ea)
		require.ErrorIs(t, err, errs.ErrInvalidName)
	})

	t.Run("empty group", func(t *testing.T) {
		g, err := Group("empty", "")
		require.NoError(t, err)
		require.Zero(t, g.ByteSize())
	})
}

func TestRecord(t *testing.T) {
	t.Run("fully declared records condense to one span", func(t *testing.T) {
		records := make([]pair, 3)
		e, err := Record("pairs", "pair list", records, pairFields()...)
		require.NoError(t, err)

		require.True(t, e.IsRecord())
		require.True(t, e.IsContiguous())
		require.Equal(t, section.RecordType, e.TypeLabel())
		require.Equal(t, 8, e.TypeSize())
		require.Equal(t, 3, e.Count())
		require.Equal(t, 24, e.ByteSize())

		spans := e.Spans()
		require.Len(t, spans, 1)
		require.Equal(t, 24, spans[0].Len())
		require.Equal(t, uintptr(unsafe.Pointer(&records[0])), spans[0].Start())
	})

	t.Run("fields are ordered by offset and keep declaration index", func(t *testing.T) {
		var p pair
		fields := pairFields()
		e, err := Struct("p", "", &p, fields[2], fields[0], fields[1])
		require.NoError(t, err)

		children := e.Children()
		require.Equal(t, "a", children[0].Name())
		require.Equal(t, 1, children[0].ParentIndex())
		require.Equal(t, "b", children[1].Name())
		require.Equal(t, 2, children[1].ParentIndex())
		require.Equal(t, "pad", children[2].Name())
		require.Equal(t, 0, children[2].ParentIndex())
		require.Equal(t, 3, children[2].Count())
		require.Equal(t, uintptr(unsafe.Pointer(&p.B)), children[1].Spans()[0].Start())

		d := e.Descriptor()
		require.Equal(t, section.RecordType, d.Type)
		require.Len(t, d.Fields, 3)
		require.Equal(t, section.Descriptor{Name: "b", Desc: "second", Type: "int8", Count: 1, Ind: 2}, d.Fields[1])
	})

	t.Run("padding mismatch reports both sizes", func(t *testing.T) {
		var p pair
		fields := pairFields()
		_, err := Struct("p", "sample", &p, fields[0], fields[1])
		require.ErrorIs(t, err, errs.ErrLayoutMismatch)
		require.Contains(t, err.Error(), "record size is 8")
		require.Contains(t, err.Error(), "total field size is 5")
		require.Contains(t, err.Error(), "padding")
		require.Contains(t, err.Error(), "description:sample")
	})

	t.Run("field outside the record", func(t *testing.T) {
		var p pair
		var outside [4]uint8
		_, err := Struct("p", "", &p,
			Member("a", "", func(p *pair) *int32 { return &p.A }),
			MemberArray("ext", "", func(*pair) []uint8 { return outside[:] }),
		)
		require.ErrorIs(t, err, errs.ErrLayoutMismatch)
	})

	t.Run("overlapping fields", func(t *testing.T) {
		var p pair
		_, err := Struct("p", "", &p,
			Member("a", "", func(p *pair) *int32 { return &p.A }),
			FieldAt[pair, uint8]("x", "", 2, 4),
		)
		require.ErrorIs(t, err, errs.ErrLayoutMismatch)
		require.Contains(t, err.Error(), "overlap")
	})

	t.Run("offset builder", func(t *testing.T) {
		var p pair
		e, err := Struct("p", "", &p,
			FieldAt[pair, int32]("a", "", unsafe.Offsetof(p.A), 1),
			FieldAt[pair, int8]("b", "", unsafe.Offsetof(p.B), 1),
			FieldAt[pair, uint8]("pad", "", unsafe.Offsetof(p.Pad), 3),
		)
		require.NoError(t, err)
		require.Equal(t, 8, e.ByteSize())
	})

	t.Run("duplicate field name", func(t *testing.T) {
		var p pair
		_, err := Struct("p", "", &p,
			Member("a", "", func(p *pair) *int32 { return &p.A }),
			MemberArray("a", "", func(p *pair) []uint8 { return p.Pad[:] }),
		)
		require.ErrorIs(t, err, errs.ErrDuplicateName)
	})

	t.Run("invalid field name", func(t *testing.T) {
		var p pair
		_, err := Struct("p", "", &p, Member("_a", "", func(p *pair) *int32 { return &p.A }))
		require.ErrorIs(t, err, errs.ErrInvalidName)
	})

	t.Run("no records", func(t *testing.T) {
		_, err := Record[pair]("p", "", nil, pairFields()...)
		require.ErrorIs(t, err, errs.ErrInvalidSpan)

		_, err = Struct[pair]("p", "", nil, pairFields()...)
		require.ErrorIs(t, err, errs.ErrInvalidSpan)
	})

	t.Run("zero count field", func(t *testing.T) {
		var p pair
		_, err := Struct("p", "", &p, FieldAt[pair, uint8]("x", "", 0, 0))
		require.ErrorIs(t, err, errs.ErrInvalidSpan)
	})
}
