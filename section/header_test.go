package section

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/caplog/errs"
	"github.com/arloliu/caplog/format"
)

func sampleDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "imu", Desc: "inertial unit", Type: GroupType, Count: 1},
		{Name: "imu.accel", Desc: "m/s^2 <x,y,z>", Type: "float32", Count: 3},
		{
			Name: "imu.samples", Desc: "raw samples", Type: RecordType, Count: 4, Ind: 1,
			Fields: []Descriptor{
				{Name: "t", Desc: "tick", Type: "uint32", Count: 1},
				{Name: "v", Desc: "value", Type: "int16", Count: 2, Ind: 1},
			},
		},
	}
}

func TestNewHeader(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h, err := NewHeader(format.RowDiff1, sampleDescriptors(), 44)
		require.NoError(t, err)
		require.Equal(t, format.RowDiff1, h.Compression)
		require.Equal(t, 44, h.RowSize)
		require.Len(t, h.DataHeader, 3)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := NewHeader(format.RowEncoding(0), nil, 0)
		require.ErrorIs(t, err, errs.ErrInvalidRowEncoding)
	})

	t.Run("negative row size", func(t *testing.T) {
		_, err := NewHeader(format.RowRaw, nil, -1)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("nil descriptors encode as empty array", func(t *testing.T) {
		h, err := NewHeader(format.RowRaw, nil, 0)
		require.NoError(t, err)

		text, err := h.Text()
		require.NoError(t, err)
		require.JSONEq(t, `{"compression":"RAW","data_header":[],"row_size":0}`, string(text))
	})
}

func TestHeader_Text(t *testing.T) {
	h, err := NewHeader(format.RowRaw, sampleDescriptors(), 44)
	require.NoError(t, err)

	text, err := h.Text()
	require.NoError(t, err)

	s := string(text)
	require.True(t, strings.HasPrefix(s, "{\n\t\"compression\": \"RAW\""))
	require.Less(t, strings.Index(s, `"compression"`), strings.Index(s, `"data_header"`))
	require.Less(t, strings.Index(s, `"data_header"`), strings.Index(s, `"row_size"`))
	require.Contains(t, s, "<x,y,z>", "HTML characters must not be escaped")
	require.NotContains(t, s, "\x00")
	require.False(t, strings.HasSuffix(s, "\n"))

	// Only record descriptors carry fields.
	require.Equal(t, 1, strings.Count(s, `"fields"`))
}

func TestHeader_Bytes(t *testing.T) {
	h, err := NewHeader(format.RowRaw, sampleDescriptors(), 44)
	require.NoError(t, err)

	text, err := h.Text()
	require.NoError(t, err)
	data, err := h.Bytes()
	require.NoError(t, err)

	require.Equal(t, len(text)+1, len(data))
	require.Equal(t, Terminator, data[len(data)-1])
	require.Equal(t, 1, bytes.Count(data, []byte{Terminator}))
}

func TestParse(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		h, err := NewHeader(format.RowDiff1, sampleDescriptors(), 44)
		require.NoError(t, err)
		data, err := h.Bytes()
		require.NoError(t, err)

		parsed, err := Parse(data)
		require.NoError(t, err)
		require.Equal(t, h, parsed)
		require.True(t, parsed.DataHeader[0].IsGroup())
		require.True(t, parsed.DataHeader[2].IsRecord())
	})

	t.Run("unknown compression", func(t *testing.T) {
		_, err := Parse([]byte(`{"compression":"LZW","data_header":[],"row_size":0}`))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
		require.ErrorIs(t, err, errs.ErrInvalidRowEncoding)
	})

	t.Run("missing compression", func(t *testing.T) {
		_, err := Parse([]byte(`{"data_header":[],"row_size":0}`))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := Parse([]byte(`{"compression":"RAW","data_header":[],"row_size":0,"extra":1}`))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := Parse([]byte("compression=RAW"))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := Parse([]byte(`{"compression":"RAW","data_header":[],"row_size":0} {}`))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("descriptor without name", func(t *testing.T) {
		_, err := Parse([]byte(`{"compression":"RAW","data_header":[{"name":"","desc":"","type":"int8","count":1,"ind":0}],"row_size":1}`))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("fields on a non-record", func(t *testing.T) {
		_, err := Parse([]byte(`{"compression":"RAW","data_header":[{"name":"a","desc":"","type":"int8","count":1,"ind":0,"fields":[{"name":"b","desc":"","type":"int8","count":1,"ind":0}]}],"row_size":1}`))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})
}

func TestReadHeader(t *testing.T) {
	h, err := NewHeader(format.RowRaw, sampleDescriptors(), 44)
	require.NoError(t, err)
	data, err := h.Bytes()
	require.NoError(t, err)

	rows := []byte{1, 2, 3, 0, 5}

	t.Run("positions reader at first row", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader(append(bytes.Clone(data), rows...)))
		parsed, text, err := ReadHeader(r)
		require.NoError(t, err)
		require.Equal(t, h, parsed)
		require.Equal(t, data[:len(data)-1], text)

		rest := make([]byte, len(rows))
		_, err = r.Read(rest)
		require.NoError(t, err)
		require.Equal(t, rows, rest)
	})

	t.Run("header larger than reader buffer", func(t *testing.T) {
		r := bufio.NewReaderSize(bytes.NewReader(data), 16)
		parsed, _, err := ReadHeader(r)
		require.NoError(t, err)
		require.Equal(t, h, parsed)
	})

	t.Run("missing terminator", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader(data[:len(data)-1]))
		_, _, err := ReadHeader(r)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := ReadHeader(bufio.NewReader(bytes.NewReader(nil)))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})
}
