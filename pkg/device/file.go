package device

import (
	"errors"
	"os"
)

// File is a device backed by an operating system file.
//
// The zero value is a closed File; attach it with Open.
type File struct {
	f    *os.File
	name string
	mode OpenMode
}

var (
	_ ReadWriter   = (*File)(nil)
	_ Seeker       = (*File)(nil)
	_ Closer       = (*File)(nil)
	_ WriteFlusher = (*File)(nil)
	_ Opener       = (*File)(nil)
)

// OpenFile opens name with mode and returns the device.
func OpenFile(name string, mode OpenMode) (*File, error) {
	var f File
	if err := f.Open(name, mode); err != nil {
		return nil, err
	}
	return &f, nil
}

// NewFile wraps an already open *os.File. The device takes ownership of f.
func NewFile(f *os.File, mode OpenMode) *File {
	return &File{f: f, name: f.Name(), mode: mode}
}

// osFlags translates an open mode into os.OpenFile flags.
func osFlags(mode OpenMode) int {
	var flag int
	switch {
	case mode.Has(In | Out):
		flag = os.O_RDWR
	case mode.Has(Out):
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if mode.Has(Out) {
		flag |= os.O_CREATE
	}
	if mode.Has(Append) {
		flag |= os.O_APPEND
	}
	if mode.Has(Truncate) {
		flag |= os.O_TRUNC
	}
	return flag
}

// Open attaches the device to name. An already open File is closed first.
func (d *File) Open(name string, mode OpenMode) error {
	if mode&(In|Out) == 0 {
		return &Error{Op: "open", Name: name, Err: errors.New("mode neither reads nor writes")}
	}
	if d.f != nil {
		if err := d.Close(); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(name, osFlags(mode), 0o644)
	if err != nil {
		return wrapErr("open", name, err)
	}
	d.f, d.name, d.mode = f, name, mode
	return nil
}

// IsOpen reports whether a file is attached.
func (d *File) IsOpen() bool { return d.f != nil }

// Name returns the file name.
func (d *File) Name() string { return d.name }

// Mode returns the mode the file was opened with.
func (d *File) Mode() OpenMode { return d.mode }

// Fd returns the file descriptor.
func (d *File) Fd() uintptr {
	mustOpen(d.f != nil, "file", "fd")
	return d.f.Fd()
}

// Read reads up to len(p) bytes.
func (d *File) Read(p []byte) (int, error) {
	mustOpen(d.f != nil, "file", "read")
	n, err := d.f.Read(p)
	return n, wrapErr("read", d.name, err)
}

// Write writes p and reports how much was accepted.
func (d *File) Write(p []byte) (int, error) {
	mustOpen(d.f != nil, "file", "write")
	n, err := d.f.Write(p)
	return n, wrapErr("write", d.name, err)
}

// Seek moves the file offset.
func (d *File) Seek(offset int64, whence Whence) (int64, error) {
	mustOpen(d.f != nil, "file", "seek")
	pos, err := d.f.Seek(offset, int(whence))
	return pos, wrapErr("seek", d.name, err)
}

// Flush commits written data to stable storage.
func (d *File) Flush() error {
	mustOpen(d.f != nil, "file", "sync")
	return wrapErr("sync", d.name, d.f.Sync())
}

// Close releases the file. Closing a closed File is a no-op.
func (d *File) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return wrapErr("close", d.name, err)
}
