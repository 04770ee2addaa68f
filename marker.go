package selfstore

import "github.com/maja42/selfstore/internal"

// MarkerSize is the size of the marker separating program and payload.
const MarkerSize = internal.MarkerSize

// Marker returns the byte sequence that separates the program from its payload.
// Only the first occurrence within an image counts.
func Marker() []byte {
	return internal.Marker()
}
