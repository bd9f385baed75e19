// Package iocli abstracts the terminal output of the client commands.
package iocli

// IO is where commands print their results.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	Write(p []byte) (n int, err error)
}
