package iostreams

import (
	"bytes"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

var osStreams *IOStreams

type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Empty type to represent the _type_ IOStreams. Genesis is to support a key in a Context
type Key struct{}

// StreamsKey is a global instance of the Key type
var StreamsKey = Key{}

// Get a singleton instance of the OS IOStreams
func GetOSIOStreams() *IOStreams {
	if osStreams == nil {
		osStreams = &IOStreams{
			In:     os.Stdin,
			Out:    os.Stdout,
			ErrOut: os.Stderr,
		}
	}
	return osStreams
}

func NewTestIOStreams() (IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return IOStreams{
		In:     in,
		Out:    out,
		ErrOut: errOut,
	}, in, out, errOut
}

type fdProvider interface {
	Fd() uintptr
}

// IsTerminal reports whether w is backed by a terminal. Buffers and pipes
// are never terminals.
func IsTerminal(w any) bool {
	fp, ok := w.(fdProvider)
	if !ok {
		return false
	}
	fd := fp.Fd()
	if fd == ^uintptr(0) {
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive is true when both input and output are attached to a terminal.
func (s *IOStreams) IsInteractive() bool {
	if s == nil {
		return false
	}
	return IsTerminal(s.In) && IsTerminal(s.Out)
}
