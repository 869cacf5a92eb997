package sas

import (
	"bufio"
	"io"
	"strings"
)

// lineReader is a cursor over the records of a SAS+ document. Every
// record is a single line; exhaustion is reported explicitly rather
// than as an empty record, since empty lines are not valid records.
type lineReader struct {
	scanner *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lineReader{scanner: scanner}
}

// Next returns the next record and true, or "" and false once the
// input is exhausted.
func (r *lineReader) Next() (string, bool) {
	if !r.scanner.Scan() {
		return "", false
	}
	return strings.TrimRight(r.scanner.Text(), "\r\n"), true
}
