// Package capfile reads capture files written by package capture.
//
// A capture file is self-describing: its JSON header lists every recorded entry with its
// type label and count, so the byte layout of a row can be rebuilt without the program that
// wrote it. The Reader parses the header, derives that layout and then decodes rows one at a
// time, undoing the DIFF1 encoding when the header announces it.
//
// # Usage
//
//	r, err := capfile.Open("captures/20240315_142530+0100/motor.cap")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	for i, row := range r.All() {
//		readings, err := r.Readings(row)
//		if err != nil {
//			return err
//		}
//		fmt.Println(i, readings)
//	}
//	if err := r.Err(); err != nil {
//		return err
//	}
//
// Archived files ("motor.cap.zst", "motor.cap.s2", "motor.cap.lz4") are decompressed by Open
// before reading.
//
// # Layout
//
// Rows are the concatenation of the entries in header order. Groups occupy no bytes. A
// fundamental entry occupies count elements of its type. A record entry ("struct")
// occupies count records, each being the concatenation of its fields; Fields expands it into
// one Field per record and member, named "<record>[<i>].<field>".
//
// Multi-byte values are stored in the byte order of the recording host. Readings decodes
// them with the native byte order unless WithByteOrder selects another one.
//
// A Reader is not safe for concurrent use.
package capfile
