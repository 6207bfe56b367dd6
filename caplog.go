// Package caplog records structured, self-describing binary telemetry from live process
// memory.
//
// An application describes the variables it wants to observe as a tree of entries, groups
// them into named logs and lets a manager write every log into a timestamped directory.
// Each recorded row is a verbatim copy of the described memory, optionally delta-encoded,
// behind a JSON header that makes the file readable without the program that wrote it.
//
// # Core Features
//
//   - Entry trees over fundamental values, arrays and struct records, with no reflection on
//     the recording path
//   - Adjacent memory condensed into few copies per row
//   - RAW rows, or DIFF1 rows carrying a changed-byte mask plus changed-byte deltas
//   - Time-based rotation into "<root>/<YYYYMMDD_HHMMSS+ZZZZ>/" directories
//   - Optional archive compression of closed files (Zstd, S2, LZ4)
//   - A reader that decodes files back into typed values
//
// # Basic Usage
//
// Describing and recording state:
//
//	var motor struct {
//	    Speed float32
//	    Temp  int16
//	    Fault bool
//	    _     uint8
//	}
//
//	speed, _ := entry.Value("speed", "rpm", &motor.Speed)
//	temp, _ := entry.Value("temp", "degrees C", &motor.Temp)
//	fault, _ := entry.Value("fault", "", &motor.Fault)
//
//	log, _ := caplog.NewDiffLog("motor", "drive state", speed, temp, fault)
//	manager, _ := caplog.NewManager("captures", log)
//	manager.Start()
//	defer manager.Stop()
//
//	for range ticker.C {
//	    log.Record()
//	    manager.RestartIfNeeded()
//	}
//
// Reading a capture back:
//
//	r, _ := caplog.Open("captures/20240315_142530+0100/motor.cap")
//	defer r.Close()
//	for _, row := range r.All() {
//	    speed, _ := r.Value("motor.speed", row)
//	    fmt.Println(speed)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the capture and capfile
// packages. For options and fine-grained control, use those packages directly; entries are
// built with package entry.
package caplog

import (
	"github.com/arloliu/caplog/capfile"
	"github.com/arloliu/caplog/capture"
	"github.com/arloliu/caplog/entry"
	"github.com/arloliu/caplog/format"
	"github.com/arloliu/caplog/internal/hash"
)

// NewLog creates a log with the given row encoding.
//
// Parameters:
//   - name: Log name, also the capture file name
//   - desc: Free-form description
//   - method: format.RowRaw or format.RowDiff1
//   - children: Top level entries
//   - opts: capture.WithLogger, capture.WithBufferSize, capture.WithArchiveCompression
//
// Returns:
//   - *capture.Log: Stopped log
//   - error: Entry validation or configuration error
func NewLog(name, desc string, method format.RowEncoding, children []*entry.Entry, opts ...capture.LogOption) (*capture.Log, error) {
	return capture.NewLog(name, desc, method, children, opts...)
}

// NewRawLog creates a log writing every row verbatim.
//
// Use it for state that changes on most bytes of every row, or when the capture files are
// archived anyway.
func NewRawLog(name, desc string, children ...*entry.Entry) (*capture.Log, error) {
	return capture.NewLog(name, desc, format.RowRaw, children)
}

// NewDiffLog creates a log writing DIFF1 rows, the recommended encoding for state that
// changes slowly between rows.
func NewDiffLog(name, desc string, children ...*entry.Entry) (*capture.Log, error) {
	return capture.NewLog(name, desc, format.RowDiff1, children)
}

// NewManager creates a stopped manager writing logs below root, with default options.
func NewManager(root string, logs ...*capture.Log) (*capture.Manager, error) {
	return capture.NewManager(root, logs)
}

// Open opens a capture file, archived or not, for reading.
func Open(path string, opts ...capfile.ReaderOption) (*capfile.Reader, error) {
	return capfile.Open(path, opts...)
}

// EntryID returns the 64-bit xxHash of a dotted entry path, a compact key for indexing
// decoded readings.
//
// Example:
//
//	ids := map[uint64][]any{}
//	for _, rd := range readings {
//	    ids[caplog.EntryID(rd.Field.Name)] = rd.Values
//	}
func EntryID(path string) uint64 {
	return hash.ID(path)
}
