// Package section defines the textual header that opens every capture file.
//
// # File Structure
//
// A capture file is a header followed by a stream of rows:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (UTF-8 JSON, variable)                           │
//	│  - compression: "RAW" or "DIFF1"                        │
//	│  - data_header: entry descriptors                       │
//	│  - row_size: bytes per decoded row                      │
//	├─────────────────────────────────────────────────────────┤
//	│ Terminator (1 byte, 0x00)                               │
//	├─────────────────────────────────────────────────────────┤
//	│ Rows (no framing)                                       │
//	│  - RAW:   row_size bytes each                           │
//	│  - DIFF1: ceil(row_size/8) mask bytes + changed deltas  │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
//	{
//		"compression": "RAW",
//		"data_header": [
//			{"name": "imu", "desc": "inertial unit", "type": "", "count": 1, "ind": 0},
//			{"name": "imu.accel", "desc": "m/s^2", "type": "float32", "count": 3, "ind": 0},
//			{"name": "imu.samples", "desc": "raw samples", "type": "struct", "count": 4, "ind": 1,
//			 "fields": [
//				{"name": "t", "desc": "tick", "type": "uint32", "count": 1, "ind": 0},
//				{"name": "v", "desc": "value", "type": "int16", "count": 2, "ind": 1}
//			 ]}
//		],
//		"row_size": 44
//	}
//
// Descriptors appear in row order: the bytes of a row are the bytes of every descriptor
// that owns memory, in the order listed, each taking count elements of its type. Group
// descriptors (type "") own no bytes and only introduce a dotted name prefix. Record
// descriptors (type "struct") own count records laid out one after the other; each record
// holds its fields in the order of "fields". The "ind" member is the declaration position
// of the entry among its siblings.
//
// The header is written once per file; it never changes while a file is open.
package section
