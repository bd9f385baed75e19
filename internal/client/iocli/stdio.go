package iocli

import (
	"fmt"
	"io"
	"os"
)

// Stdio prints to a writer, os.Stdout by default.
type Stdio struct {
	w io.Writer
}

func NewStdio() IO {
	return &Stdio{w: os.Stdout}
}

// NewWriter returns an IO printing to w.
func NewWriter(w io.Writer) IO {
	return &Stdio{w: w}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.w, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.w, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.w.Write(p)
}
