// Package entry describes which parts of an application's memory a capture log records.
//
// An Entry is a named node of a schema tree. Leaves reference live memory through spans;
// containers give their children a common name prefix. Three kinds of entries exist:
//
//   - Values and arrays (Value, Array): one contiguous span of fundamental elements such
//     as int32 or float64. Named integer types (enums) are recorded as their underlying type.
//   - Groups (Group): pure namespaces without memory of their own. Flatten recurses into
//     them and names their descendants "group.child".
//   - Records (Record, Struct): one or more host structs described field by field. The
//     declared fields must cover every byte of the struct, so padding has to be declared
//     explicitly (for example as a "pad" uint8 array) or removed from the struct.
//
// # Example
//
//	type sample struct {
//		Tick  uint32
//		Value [2]int16
//	}
//
//	var (
//		speed   float64
//		samples [4]sample
//	)
//
//	speedEntry, err := entry.Value("speed", "m/s", &speed)
//	...
//	samplesEntry, err := entry.Record("samples", "last samples", samples[:],
//		entry.Member("tick", "scheduler tick", func(s *sample) *uint32 { return &s.Tick }),
//		entry.MemberArray("value", "adc value", func(s *sample) []int16 { return s.Value[:] }),
//	)
//	...
//	root, err := entry.Group("motor", "motor state", speedEntry, samplesEntry)
//
// Entries are immutable once built. The memory they reference is owned by the application
// and must outlive every log built from them.
package entry
