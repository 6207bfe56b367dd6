package entry

import (
	"cmp"
	"slices"

	"github.com/arloliu/caplog/section"
	"github.com/arloliu/caplog/span"
)

// Flatten lists root and every entry reachable from it through groups.
//
// Contiguous entries (values, arrays and records) are listed but not entered. The listed
// entries are copies renamed with their dotted path from root, for example
// "telemetry.imu.accel"; root itself is not modified. The result is in depth-first
// declaration order; use Sort to obtain the row order.
func Flatten(root *Entry) []*Entry {
	if root == nil {
		return nil
	}

	var out []*Entry
	flattenInto(&out, root, "")

	return out
}

func flattenInto(out *[]*Entry, e *Entry, prefix string) {
	c := e.clone()
	if prefix != "" {
		c.name = prefix + "." + e.name
	}
	*out = append(*out, c)

	if e.contiguous {
		return
	}
	for _, child := range e.children {
		flattenInto(out, child, c.name)
	}
}

// Sort orders flattened entries in place into row order.
//
// Entries without spans come first, shorter names before longer ones. Entries with spans
// follow, ordered by the address of their first span. The sort is stable, so the order is
// deterministic for a given tree and memory layout.
func Sort(entries []*Entry) {
	slices.SortStableFunc(entries, compareEntries)
}

func compareEntries(a, b *Entry) int {
	aSpanless, bSpanless := len(a.spans) == 0, len(b.spans) == 0
	switch {
	case aSpanless && bSpanless:
		return cmp.Compare(len(a.name), len(b.name))
	case aSpanless:
		return -1
	case bSpanless:
		return 1
	default:
		return cmp.Compare(a.spans[0].Start(), b.spans[0].Start())
	}
}

// CollectSpans returns the spans of entries, in order, condensed. The total length of the
// result is the size of one row.
func CollectSpans(entries []*Entry) []span.Span {
	var spans []span.Span
	for _, e := range entries {
		spans = append(spans, e.spans...)
	}

	return span.Condense(spans)
}

// Descriptors returns the header descriptors of entries, in order.
func Descriptors(entries []*Entry) []section.Descriptor {
	out := make([]section.Descriptor, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Descriptor())
	}

	return out
}
