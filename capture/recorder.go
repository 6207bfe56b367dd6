package capture

import (
	"github.com/arloliu/caplog/span"
)

// recorder writes one row. A nil row means the row is sampled from the log's spans.
// It returns the number of bytes handed to the file writer.
type recorder func(l *Log, row []byte) int

// recordNull is the recorder of a stopped log.
func recordNull(*Log, []byte) int {
	return 0
}

// sample returns row, or the current contents of the log's spans when row is nil.
func (l *Log) sample(row []byte) []byte {
	if row != nil {
		return row
	}
	span.Gather(l.row, l.spans)

	return l.row
}

// recordEncoded is the recorder of a started log. The row encoder was chosen when the log
// was built, so recording never branches on the encoding.
func (l *Log) recordEncoded(row []byte) int {
	if l.err != nil {
		return 0
	}

	row = l.sample(row)
	l.out.B = l.enc.Append(l.out.B[:0], row, l.prev)

	return l.write(l.out.B)
}

// write hands b to the file writer. A row is counted only once it was written whole;
// empty rows, produced by logs without spans, are neither written nor counted.
func (l *Log) write(b []byte) int {
	if len(b) == 0 {
		return 0
	}

	n, err := l.w.Write(b)
	l.bytes.Add(uint64(n)) //nolint: gosec
	if err != nil {
		l.fail(err)

		return n
	}
	l.rows.Add(1)

	return n
}
