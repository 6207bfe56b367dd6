package span

import (
	"math/rand/v2"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	var v int32 = 0x11223344
	s := Of(&v)

	require.Equal(t, 4, s.Len())
	require.Equal(t, uintptr(unsafe.Pointer(&v)), s.Start())
	require.Equal(t, s.Start()+4, s.End())
	require.False(t, s.IsZero())

	require.True(t, Of[int32](nil).IsZero())
	require.True(t, Of(&struct{}{}).IsZero())
}

func TestOfSlice(t *testing.T) {
	arr := [4]uint16{1, 2, 3, 4}
	s := OfSlice(arr[:])
	require.Equal(t, 8, s.Len())
	require.Equal(t, uintptr(unsafe.Pointer(&arr[0])), s.Start())

	require.True(t, OfSlice([]uint16{}).IsZero())
	require.True(t, OfSlice[uint16](nil).IsZero())
}

func TestSpan_Bytes(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	s := FromBytes(buf[1:3])
	require.Equal(t, []byte{2, 3}, s.Bytes())

	buf[2] = 9
	require.Equal(t, []byte{2, 9}, s.Bytes(), "Bytes should be a live view")

	require.Nil(t, Span{}.Bytes())
}

func TestAt(t *testing.T) {
	type rec struct {
		A uint32
		B uint16
	}
	r := rec{}
	s := At(unsafe.Pointer(&r), unsafe.Offsetof(r.B), 2)
	require.Equal(t, uintptr(unsafe.Pointer(&r.B)), s.Start())
	require.Equal(t, 2, s.Len())

	require.True(t, At(nil, 0, 2).IsZero())
	require.True(t, At(unsafe.Pointer(&r), 0, 0).IsZero())
}

// window returns the span of buf[lo:hi], owned by buf itself.
func window(buf unsafe.Pointer, lo, hi int) Span {
	return At(buf, uintptr(lo), hi-lo)
}

func TestSpan_Adjacent(t *testing.T) {
	var buf [16]byte
	base := unsafe.Pointer(&buf)
	a := window(base, 0, 4)
	b := window(base, 4, 8)
	c := window(base, 9, 12)

	require.True(t, a.Adjacent(b))
	require.False(t, b.Adjacent(a))
	require.False(t, b.Adjacent(c))
	require.False(t, a.Adjacent(Span{}))
	require.True(t, a.SameOwner(c))

	// Sub-slices are owned by their own first element.
	require.False(t, FromBytes(buf[0:4]).Adjacent(FromBytes(buf[4:8])))
}

func TestSpan_AdjacentAllocations(t *testing.T) {
	first, second := adjacentArrays(t)

	a := OfSlice(first[:])
	b := OfSlice(second[:])
	require.Equal(t, a.End(), b.Start())
	require.False(t, a.SameOwner(b))
	require.False(t, a.Adjacent(b))

	got := Condense([]Span{a, b})
	require.Len(t, got, 2, "separate allocations must stay separate spans")

	row := make([]byte, TotalLen(got))
	require.Equal(t, 64, Gather(row, got))
	require.Equal(t, first[0], *(*int64)(unsafe.Pointer(&row[0])))
	require.Equal(t, second[0], *(*int64)(unsafe.Pointer(&row[32])))
}

// adjacentArrays allocates [4]int64 arrays until two of them sit back to back in memory.
func adjacentArrays(t *testing.T) (*[4]int64, *[4]int64) {
	t.Helper()

	keep := make([]*[4]int64, 0, 256)
	for i := range 256 {
		p := new([4]int64)
		p[0] = int64(i + 1)
		keep = append(keep, p)
	}
	for _, p := range keep {
		for _, q := range keep {
			if uintptr(unsafe.Pointer(p))+unsafe.Sizeof(*p) == uintptr(unsafe.Pointer(q)) {
				return p, q
			}
		}
	}
	t.Skip("allocator placed no two arrays back to back")

	return nil, nil
}

func TestCondense(t *testing.T) {
	var buf [64]byte
	base := unsafe.Pointer(&buf)

	t.Run("empty input", func(t *testing.T) {
		require.Empty(t, Condense(nil))
	})

	t.Run("mutually adjacent spans collapse to one", func(t *testing.T) {
		spans := []Span{
			window(base, 0, 3),
			window(base, 3, 4),
			window(base, 4, 12),
			window(base, 12, 13),
		}
		got := Condense(spans)
		require.Len(t, got, 1)
		require.Equal(t, 13, got[0].Len())
		require.Equal(t, spans[0].Start(), got[0].Start())
	})

	t.Run("gaps keep spans apart and preserve order", func(t *testing.T) {
		spans := []Span{
			window(base, 0, 4),
			window(base, 4, 8),
			window(base, 10, 12),
			window(base, 12, 14),
			window(base, 20, 21),
		}
		got := Condense(spans)
		require.Len(t, got, 3)
		require.Equal(t, 8, got[0].Len())
		require.Equal(t, 4, got[1].Len())
		require.Equal(t, 1, got[2].Len())
		require.Equal(t, TotalLen(spans), TotalLen(got))
	})

	t.Run("order dependent: reversed adjacent spans do not merge", func(t *testing.T) {
		spans := []Span{window(base, 4, 8), window(base, 0, 4)}
		require.Len(t, Condense(spans), 2)
	})

	t.Run("different owners do not merge", func(t *testing.T) {
		spans := []Span{FromBytes(buf[0:4]), FromBytes(buf[4:8])}
		require.Len(t, Condense(spans), 2)
	})

	t.Run("input is not modified", func(t *testing.T) {
		spans := []Span{window(base, 0, 4), window(base, 4, 8)}
		_ = Condense(spans)
		require.Equal(t, 4, spans[0].Len())
	})
}

func TestCondense_Idempotent(t *testing.T) {
	var buf [256]byte
	base := unsafe.Pointer(&buf)
	rng := rand.New(rand.NewPCG(7, 11))

	for range 50 {
		var spans []Span
		off := 0
		for off < len(buf)-8 {
			n := 1 + rng.IntN(6)
			spans = append(spans, window(base, off, off+n))
			off += n + rng.IntN(2) // sometimes leave a gap
		}

		once := Condense(spans)
		twice := Condense(once)
		require.Equal(t, once, twice)
		require.Equal(t, TotalLen(spans), TotalLen(once))
	}
}

func TestGather(t *testing.T) {
	type sample struct {
		A int32
		B int8
	}
	s := sample{A: 0x11223344, B: 7}
	base := unsafe.Pointer(&s)
	spans := Condense([]Span{
		At(base, unsafe.Offsetof(s.A), 4),
		At(base, unsafe.Offsetof(s.B), 1),
	})
	require.Len(t, spans, 1)

	row := make([]byte, TotalLen(spans))
	n := Gather(row, spans)
	require.Equal(t, 5, n)
	require.Equal(t, int8(7), int8(row[4]))

	short := make([]byte, 2)
	require.Equal(t, 2, Gather(short, spans))
}
