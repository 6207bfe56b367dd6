package pool

import (
	"io"
	"sync"
)

// Default sizes of the pooled buffers. Row buffers stage one encoded row before it is
// handed to the file writer; archive buffers hold a whole compressed capture file.
const (
	RowBufferDefaultSize       = 512              // 512B
	RowBufferMaxThreshold      = 1024 * 64        // 64KiB
	ArchiveBufferDefaultSize   = 1024 * 1024      // 1MiB
	ArchiveBufferMaxThreshold  = 1024 * 1024 * 16 // 16MiB
	archiveBufferLargeCapacity = 4 * ArchiveBufferDefaultSize
)

// ByteBuffer is a reusable, append-only byte slice.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the given initial capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the buffered bytes.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its allocation.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the number of buffered bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow ensures the buffer can take n more bytes without reallocating.
//
// Small buffers grow by at least RowBufferDefaultSize; buffers larger than
// archiveBufferLargeCapacity grow by a quarter of their capacity.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	growBy := RowBufferDefaultSize
	if cap(bb.B) > archiveBufferLargeCapacity {
		growBy = cap(bb.B) / 4
	}
	growBy = max(growBy, n)

	grown := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(grown, bb.B)
	bb.B = grown
}

// Write appends data to the buffer. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the buffered bytes to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool recycles ByteBuffers through a sync.Pool.
//
// Buffers whose capacity exceeds maxThreshold are dropped on Put so one oversized
// capture file does not pin its memory for the lifetime of the process.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of defaultSize capacity.
// A maxThreshold of zero keeps every returned buffer.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get returns an empty buffer.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put resets bb and returns it to the pool. Nil buffers are ignored.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	rowPool     = NewByteBufferPool(RowBufferDefaultSize, RowBufferMaxThreshold)
	archivePool = NewByteBufferPool(ArchiveBufferDefaultSize, ArchiveBufferMaxThreshold)
)

// GetRowBuffer returns a buffer for staging one encoded row.
func GetRowBuffer() *ByteBuffer {
	return rowPool.Get()
}

// PutRowBuffer returns a row buffer to its pool.
func PutRowBuffer(bb *ByteBuffer) {
	rowPool.Put(bb)
}

// GetArchiveBuffer returns a buffer for reading or compressing a capture file.
func GetArchiveBuffer() *ByteBuffer {
	return archivePool.Get()
}

// PutArchiveBuffer returns an archive buffer to its pool.
func PutArchiveBuffer(bb *ByteBuffer) {
	archivePool.Put(bb)
}
