package internal

import (
	"bufio"
	"bytes"
	"io"
)

// bufferSize is the chunk size used when scanning streams.
const bufferSize = 1024

// matcher finds a pattern in a byte stream, one byte at a time.
// Mismatches fall back along the failure function instead of restarting,
// so patterns with repeating prefixes ("aab" within "aaab") are not missed.
type matcher struct {
	pattern []byte
	fail    []int
	n       int // #bytes of pattern currently matched
}

func newMatcher(pattern []byte) *matcher {
	fail := make([]int, len(pattern))
	k := 0
	for i := 1; i < len(pattern); i++ {
		for k > 0 && pattern[i] != pattern[k] {
			k = fail[k-1]
		}
		if pattern[i] == pattern[k] {
			k++
		}
		fail[i] = k
	}
	return &matcher{pattern: pattern, fail: fail}
}

// feed consumes the next byte and reports whether the pattern is now complete.
// The last m.n bytes fed always equal pattern[:m.n].
func (m *matcher) feed(b byte) bool {
	for m.n > 0 && b != m.pattern[m.n] {
		m.n = m.fail[m.n-1]
	}
	if b == m.pattern[m.n] {
		m.n++
	}
	return m.n == len(m.pattern)
}

// CopyUntil copies from src to dst until the marker is found.
// The marker itself is not written. If the marker never shows up, all of src is copied.
// More bytes are read from src than written to dst: at least len(marker), possibly up to a full chunk.
// Returns the number of bytes written. An empty marker copies nothing.
func CopyUntil(dst io.Writer, src io.Reader, marker []byte) (int64, error) {
	if len(marker) == 0 {
		return 0, nil
	}
	m := newMatcher(marker)
	buf := make([]byte, bufferSize)

	var written int64
	for {
		n, rErr := src.Read(buf)

		// bytes of a partial match carried over from the previous chunk
		held := m.n
		for i := 0; i < n; i++ {
			if m.feed(buf[i]) {
				w, err := emit(dst, marker[:held], buf[:i+1], held+i+1-len(marker))
				return written + w, err
			}
		}
		if n > 0 {
			w, err := emit(dst, marker[:held], buf[:n], held+n-m.n)
			written += w
			if err != nil {
				return written, err
			}
		}

		if rErr == io.EOF {
			// a dangling partial match is regular content
			w, err := emit(dst, marker[:m.n], nil, m.n)
			return written + w, err
		}
		if rErr != nil {
			return written, rErr
		}
	}
}

// emit writes the first count bytes of head followed by tail.
func emit(w io.Writer, head, tail []byte, count int) (int64, error) {
	if count <= 0 {
		return 0, nil
	}
	if count <= len(head) {
		head, tail = head[:count], nil
	} else {
		tail = tail[:count-len(head)]
	}

	var written int64
	for _, p := range [2][]byte{head, tail} {
		if len(p) == 0 {
			continue
		}
		n, err := w.Write(p)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if n != len(p) {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// SkipPast reads from src until the end of the first marker occurrence.
// The returned reader yields everything after the marker: first the bytes that were
// already read into the scan buffer, then the remainder of src.
// Returns an empty reader and false if the marker was not found.
func SkipPast(src io.Reader, marker []byte) (io.Reader, bool, error) {
	if len(marker) == 0 {
		return bytes.NewReader(nil), false, nil
	}
	m := newMatcher(marker)
	buf := make([]byte, bufferSize)

	for {
		n, rErr := src.Read(buf)
		for i := 0; i < n; i++ {
			if m.feed(buf[i]) {
				rest := make([]byte, n-i-1)
				copy(rest, buf[i+1:n])
				return io.MultiReader(bytes.NewReader(rest), src), true, nil
			}
		}
		if rErr == io.EOF {
			return bytes.NewReader(nil), false, nil
		}
		if rErr != nil {
			return nil, false, rErr
		}
	}
}

// SeekPattern reads from the reader until the search pattern was found.
// The next byte coming from the reader will be the first byte after the pattern ended.
// Returns the number of bytes (offset) that were read (including the pattern itself).
// Returns -1 if the pattern was not found or is empty.
func SeekPattern(in io.ReadSeeker, pattern []byte) (int64, error) {
	if len(pattern) == 0 {
		return -1, nil
	}
	rPos, err := in.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1, err
	}

	var offset int64
	r := bufio.NewReaderSize(in, bufferSize)
	m := newMatcher(pattern)
	for {
		b, err := r.ReadByte()
		if err == io.EOF { // not found
			return -1, nil
		}
		if err != nil {
			return -1, err
		}
		offset++
		if m.feed(b) {
			break
		}
	}

	// seek the reader after the pattern (needed, because reading was done via the buffer)
	if _, err := in.Seek(rPos+offset, io.SeekStart); err != nil {
		return -1, err
	}
	return offset, nil
}
