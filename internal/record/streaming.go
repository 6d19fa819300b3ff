package record

// streaming.go wraps the raw CSV file reader to absorb two artifacts
// common in spreadsheet exports before the parser sees them:
//
//   - bomSkipper removes the UTF-8 BOM (0xEF 0xBB 0xBF) Windows tools
//     prepend to saved files.
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?' so a single
//     bad byte does not poison the whole batch.
//
// Both operate on the stream, so memory stays O(buffer) regardless of
// file size.

import (
	"io"
	"unicode/utf8"
)

// bomSkipper skips a leading UTF-8 BOM if present.
type bomSkipper struct {
	reader  io.Reader
	checked bool
	buf     [3]byte
	held    []byte
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{reader: r}
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		n, err := io.ReadFull(b.reader, b.buf[:])
		if n == 0 {
			return 0, err
		}
		if !(n == 3 && b.buf[0] == 0xEF && b.buf[1] == 0xBB && b.buf[2] == 0xBF) {
			b.held = b.buf[:n]
		}
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(b.held) > 0 {
		n := copy(p, b.held)
		b.held = b.held[n:]
		return n, nil
	}
	return b.reader.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly. A
// multi-byte rune split across two reads is held back until the next
// read completes it.
type utf8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if allASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

// allASCII is the fast path: most CSV data never leaves ASCII.
func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place, replacing invalid bytes with '?',
// and returns the number of valid bytes. Unless atEOF, an incomplete
// trailing sequence is saved to pending for the next read.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		if !atEOF {
			if trailing := incompleteTrailing(data); trailing > 0 {
				s.pending = append(s.pending, data[len(data)-trailing:]...)
				return len(data) - trailing
			}
		}
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if !atEOF && read+size >= len(data) && seqLen(data[read]) > len(data)-read {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		if r == utf8.RuneError && size == 1 {
			// '?' is one byte, so the rewrite never grows the buffer.
			data[write] = '?'
			write++
			read++
		} else {
			copy(data[write:], data[read:read+size])
			write += size
			read += size
		}
	}
	return write
}

// incompleteTrailing returns how many bytes at the end of data form the
// start of an unfinished multi-byte sequence.
func incompleteTrailing(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < seqLen(b) {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

// seqLen returns the expected byte length of a UTF-8 sequence starting
// with b (0 for a continuation byte).
func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}
