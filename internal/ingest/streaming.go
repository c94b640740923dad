package ingest

// streaming.go provides streaming reader wrappers for dataset files.
//
// Real-world exports of the invoice dataset come in two flavors that plain
// UTF-8 decoding chokes on:
//
//   - Windows UTF-8 files with a leading BOM (0xEF 0xBB 0xBF)
//   - latin-1 (ISO-8859-1) files containing currency symbols such as £
//
// The wrappers operate on io.Reader so files of any size stream through in
// constant memory.

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// utf8BOM is the byte order mark some Windows programs prepend to UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader positioned past a UTF-8 BOM, if one is present.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(3)
	if err == nil && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
		br.Discard(3)
	}
	return br
}

// Latin1Reader converts a latin-1 (ISO-8859-1) stream to UTF-8 on the fly.
// Every input byte maps to exactly one rune, so the conversion needs no
// lookahead and is safe at any chunk boundary.
type Latin1Reader struct {
	reader io.Reader
	buf    []byte // raw input scratch buffer
}

// NewLatin1Reader creates a latin-1 to UTF-8 converting reader.
func NewLatin1Reader(r io.Reader) *Latin1Reader {
	return &Latin1Reader{reader: r}
}

// Read implements io.Reader. Bytes >= 0x80 expand to two UTF-8 bytes, so at
// most len(p)/2 input bytes are consumed per call.
func (l *Latin1Reader) Read(p []byte) (int, error) {
	if len(p) < 2 {
		return 0, io.ErrShortBuffer
	}

	want := len(p) / 2
	if cap(l.buf) < want {
		l.buf = make([]byte, want)
	}
	n, err := l.reader.Read(l.buf[:want])

	written := 0
	for _, b := range l.buf[:n] {
		if b < 0x80 {
			p[written] = b
			written++
		} else {
			written += utf8.EncodeRune(p[written:], rune(b))
		}
	}
	return written, err
}

// SanitizingReader replaces invalid UTF-8 bytes with '?' on the fly, so a
// mostly-UTF-8 file with a few corrupt cells still parses. Incomplete
// multi-byte sequences at a chunk boundary are carried over to the next read.
type SanitizingReader struct {
	reader  io.Reader
	pending []byte
}

// NewSanitizingReader creates a streaming UTF-8 sanitizer.
func NewSanitizingReader(r io.Reader) *SanitizingReader {
	return &SanitizingReader{reader: r, pending: make([]byte, 0, utf8.UTFMax)}
}

// Read implements io.Reader.
func (s *SanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	data := p[:n]
	if allASCII(data) {
		return n, err
	}

	atEOF := err == io.EOF
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			rest := data[read:]
			if !atEOF && incompleteSequence(rest) {
				// Might be the start of a rune split across reads.
				s.pending = append(s.pending, rest...)
				return write, err
			}
			p[write] = '?'
			write++
			read++
			continue
		}
		copy(p[write:], data[read:read+size])
		write += size
		read += size
	}
	return write, err
}

// allASCII is the fast path: most dataset rows are pure ASCII.
func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// incompleteSequence reports whether data could be the truncated prefix of a
// valid multi-byte UTF-8 sequence.
func incompleteSequence(data []byte) bool {
	if len(data) == 0 || len(data) >= utf8.UTFMax {
		return false
	}
	b := data[0]
	var need int
	switch {
	case b < 0xC0:
		return false
	case b < 0xE0:
		need = 2
	case b < 0xF0:
		need = 3
	default:
		need = 4
	}
	if len(data) >= need {
		return false
	}
	for _, c := range data[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}

// Wrap prepares a dataset reader for CSV parsing according to the declared
// source encoding ("latin1" or anything else for UTF-8).
func Wrap(r io.Reader, encoding string) io.Reader {
	if encoding == "latin1" || encoding == "iso-8859-1" {
		return NewLatin1Reader(r)
	}
	return NewSanitizingReader(SkipBOM(r))
}
