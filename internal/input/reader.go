// Package input abstracts reading operator confirmations from stdin.
package input

import (
	"bufio"
	"io"
	"os"
)

// Reader is an interface for reading user input.
type Reader interface {
	ReadString(delim byte) (string, error)
}

// StdinReader wraps bufio.Reader for os.Stdin.
type StdinReader struct {
	reader *bufio.Reader
}

// NewStdinReader creates a new StdinReader.
func NewStdinReader() *StdinReader {
	return &StdinReader{reader: bufio.NewReader(os.Stdin)}
}

// ReadString reads until delimiter.
func (r *StdinReader) ReadString(delim byte) (string, error) {
	return r.reader.ReadString(delim)
}

// StringReader is a scripted reader for tests. Each input should
// already include the delimiter the caller will ask for.
type StringReader struct {
	inputs []string
	index  int
}

// NewStringReader creates a reader from pre-scripted strings.
func NewStringReader(inputs ...string) *StringReader {
	return &StringReader{inputs: inputs}
}

// ReadString returns the next pre-configured string, io.EOF when
// exhausted. The delim parameter is ignored.
func (r *StringReader) ReadString(delim byte) (string, error) {
	if r.index >= len(r.inputs) {
		return "", io.EOF
	}
	result := r.inputs[r.index]
	r.index++
	return result, nil
}
