// Package endian resolves the byte order of recorded rows.
//
// A capture row is a verbatim copy of host memory, so every multi-byte value in it is
// stored in the byte order of the machine that recorded it. Readers decoding captures on
// the same machine use Native; captures moved between architectures are decoded with an
// explicit engine:
//
//	reader, err := capfile.NewReader(f, capfile.WithByteOrder(endian.GetBigEndianEngine()))
//
// All functions in this package are safe for concurrent use and the returned engines
// are stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder.
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Native returns the engine matching the byte order of the running host.
func Native() EndianEngine {
	var marker uint16 = 0x0100

	// The lowest addressed byte holds the MSB on big-endian hosts.
	if (*[2]byte)(unsafe.Pointer(&marker))[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host stores values least significant byte first.
func IsNativeLittleEndian() bool {
	return Native() == binary.LittleEndian
}

// IsNative reports whether engine matches the host byte order.
func IsNative(engine EndianEngine) bool {
	return engine == Native()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
