// Package textrec scans whitespace-delimited text records, skipping blank
// lines and '#' comments. It is the shared front end for the COLMAP text
// parsers and the plain-text point cloud reader.
package textrec

import (
	"bufio"
	"io"
	"strings"
)

// Record is one non-comment, non-blank input line split into fields.
// Line is the 1-based line number in the underlying input.
type Record struct {
	Line   int
	Fields []string
}

// Scanner yields Records one at a time, in input order. A line counts as a
// comment when its first non-space character is '#'. Fields are split on
// any run of whitespace; there is no quoting or escaping.
type Scanner struct {
	s    *bufio.Scanner
	line int
	rec  Record
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	// points3D.txt lines carry long track lists
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Scanner{s: s}
}

// Scan advances to the next record. It returns false at end of input or on
// a read error, which is then available from Err.
func (s *Scanner) Scan() bool {
	for s.s.Scan() {
		s.line++
		text := strings.TrimSpace(s.s.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		s.rec = Record{Line: s.line, Fields: strings.Fields(text)}
		return true
	}
	return false
}

// Record returns the record read by the last successful Scan.
func (s *Scanner) Record() Record {
	return s.rec
}

// Err returns the first read error encountered, if any.
func (s *Scanner) Err() error {
	return s.s.Err()
}
