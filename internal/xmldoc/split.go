package xmldoc

import (
	"bufio"
	"bytes"
	"io"
)

// Splitter yields one XML document at a time from a batch file. Grant batches
// concatenate documents back to back, each beginning with its own XML
// declaration on a fresh line; the declaration line is the document-start
// marker. Content before the first marker is skipped. The sequence is lazy
// and single-pass: restart by re-opening the source.
type Splitter struct {
	sc      *bufio.Scanner
	buf     bytes.Buffer
	started bool
}

var docMarker = []byte("<?xml")

// NewSplitter wraps r. Individual lines in grant files can be long (claims
// text arrives as single lines), so the scanner buffer is generous.
func NewSplitter(r io.Reader) *Splitter {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	return &Splitter{sc: sc}
}

// Next returns the next document's raw text, or io.EOF when the batch is
// exhausted. The returned slice is a private copy.
func (s *Splitter) Next() ([]byte, error) {
	for s.sc.Scan() {
		line := s.sc.Bytes()
		if bytes.HasPrefix(line, docMarker) {
			if s.started && s.buf.Len() > 0 {
				out := s.take()
				s.buf.Write(line)
				s.buf.WriteByte('\n')
				return out, nil
			}
			s.started = true
			s.buf.Reset()
		}
		if s.started {
			s.buf.Write(line)
			s.buf.WriteByte('\n')
		}
	}
	if err := s.sc.Err(); err != nil {
		return nil, err
	}
	if s.started && s.buf.Len() > 0 {
		s.started = false
		return s.take(), nil
	}
	return nil, io.EOF
}

func (s *Splitter) take() []byte {
	out := append([]byte(nil), s.buf.Bytes()...)
	s.buf.Reset()
	return out
}
