package internal

// markerReversed holds the marker back to front.
// The marker itself must only appear once in an image: right before the payload.
// Storing it reversed keeps the literal out of the compiled executable.
const markerReversed = "---egarots-fles-nigeb---"

// MarkerSize is the length of the marker in bytes.
const MarkerSize = len(markerReversed)

// Marker returns the byte sequence separating the program from its payload.
// A new slice is returned on every call.
func Marker() []byte {
	m := make([]byte, MarkerSize)
	for i := 0; i < MarkerSize; i++ {
		m[i] = markerReversed[MarkerSize-1-i]
	}
	return m
}
