package entry

import (
	"reflect"
)

// Fundamental is the set of element types an entry can record directly.
// Named types are accepted, so enums declared over an integer type can be recorded.
type Fundamental interface {
	~bool |
		~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr |
		~float32 | ~float64
}

// TypeLabel returns the header type label of T, such as "int32" or "float64".
// Platform-sized kinds (int, uint, uintptr) are labelled by their actual size.
func TypeLabel[T Fundamental]() string {
	t := reflect.TypeFor[T]()

	switch t.Kind() {
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return sizedLabel("int", t.Size())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return sizedLabel("uint", t.Size())
	case reflect.Float32:
		return "float32"
	default:
		return "float64"
	}
}

func sizedLabel(prefix string, size uintptr) string {
	switch size {
	case 1:
		return prefix + "8"
	case 2:
		return prefix + "16"
	case 4:
		return prefix + "32"
	default:
		return prefix + "64"
	}
}

// LabelSize returns the element size in bytes of a fundamental type label, or 0 for labels
// that are not fundamental.
func LabelSize(label string) int {
	switch label {
	case "bool", "int8", "uint8":
		return 1
	case "int16", "uint16":
		return 2
	case "int32", "uint32", "float32":
		return 4
	case "int64", "uint64", "float64":
		return 8
	default:
		return 0
	}
}
