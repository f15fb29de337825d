package device

import "os"

// Console is a device over one of the process's standard file descriptors.
// It cannot be closed or reopened; the descriptor outlives every stream.
type Console struct {
	f *os.File
}

var _ ReadWriter = (*Console)(nil)

// Stdin, Stdout and Stderr return console devices over the process's
// standard descriptors.
func Stdin() *Console  { return &Console{f: os.Stdin} }
func Stdout() *Console { return &Console{f: os.Stdout} }
func Stderr() *Console { return &Console{f: os.Stderr} }

// NewConsole wraps f without taking ownership of it.
func NewConsole(f *os.File) *Console { return &Console{f: f} }

// IsOpen always reports true.
func (d *Console) IsOpen() bool { return true }

// Name returns the descriptor name.
func (d *Console) Name() string { return d.f.Name() }

// Read reads from the descriptor.
func (d *Console) Read(p []byte) (int, error) {
	n, err := d.f.Read(p)
	return n, wrapErr("read", d.f.Name(), err)
}

// Write writes to the descriptor.
func (d *Console) Write(p []byte) (int, error) {
	n, err := d.f.Write(p)
	return n, wrapErr("write", d.f.Name(), err)
}
