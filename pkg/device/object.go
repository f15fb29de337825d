package device

import (
	"context"
	"errors"
	"io"

	"github.com/haivivi/tio/pkg/kv"
	"github.com/haivivi/tio/pkg/storage"
)

// Object is a device over one object of a storage.Store. An object is
// opened either for reading or for writing; written bytes become the
// object's contents when the device is closed.
type Object struct {
	ctx   context.Context
	store storage.Store
	name  string
	r     io.ReadCloser
	w     io.WriteCloser
}

var (
	_ ReadWriter = (*Object)(nil)
	_ Closer     = (*Object)(nil)
	_ Opener     = (*Object)(nil)
)

// NewObject returns a closed object device over store. ctx bounds every
// store call made by the device.
func NewObject(ctx context.Context, store storage.Store) *Object {
	return &Object{ctx: ctx, store: store}
}

// OpenObject opens name in store.
func OpenObject(ctx context.Context, store storage.Store, name string, mode OpenMode) (*Object, error) {
	d := NewObject(ctx, store)
	if err := d.Open(name, mode); err != nil {
		return nil, err
	}
	return d, nil
}

// Open attaches the device to the named object. Exactly one of In and Out
// must be set; Append is not supported by object stores.
func (d *Object) Open(name string, mode OpenMode) error {
	if mode.Has(In|Out) || mode&(In|Out) == 0 {
		return &Error{Op: "open", Name: name, Err: errors.New("object must be opened for reading or writing")}
	}
	if mode.Has(Append) {
		return &Error{Op: "open", Name: name, Err: errors.New("append is not supported")}
	}
	if d.IsOpen() {
		if err := d.Close(); err != nil {
			return err
		}
	}
	var err error
	if mode.Has(In) {
		d.r, err = d.store.Open(d.ctx, name)
	} else {
		d.w, err = d.store.Create(d.ctx, name)
	}
	if err != nil {
		return wrapErr("open", name, err)
	}
	d.name = name
	return nil
}

// IsOpen reports whether an object is attached.
func (d *Object) IsOpen() bool { return d.r != nil || d.w != nil }

// Name returns the object path.
func (d *Object) Name() string { return d.name }

// Read reads from an object opened for reading.
func (d *Object) Read(p []byte) (int, error) {
	mustOpen(d.IsOpen(), "object", "read")
	if d.r == nil {
		panic("device: read on object opened for writing")
	}
	n, err := d.r.Read(p)
	return n, wrapErr("read", d.name, err)
}

// Write writes to an object opened for writing.
func (d *Object) Write(p []byte) (int, error) {
	mustOpen(d.IsOpen(), "object", "write")
	if d.w == nil {
		panic("device: write on object opened for reading")
	}
	n, err := d.w.Write(p)
	return n, wrapErr("write", d.name, err)
}

// Close detaches the object, committing written contents.
func (d *Object) Close() error {
	var err error
	switch {
	case d.r != nil:
		err = d.r.Close()
	case d.w != nil:
		err = d.w.Close()
	}
	d.r, d.w = nil, nil
	return wrapErr("close", d.name, err)
}

// Record is a seekable device over a record of a kv.Store. The record is
// loaded into memory on Open and saved back by Flush and Close.
type Record struct {
	ctx   context.Context
	store kv.Store
	name  string
	c     *Container
	dirty bool
}

var (
	_ ReadWriter   = (*Record)(nil)
	_ Seeker       = (*Record)(nil)
	_ WriteFlusher = (*Record)(nil)
	_ Closer       = (*Record)(nil)
	_ Opener       = (*Record)(nil)
)

// NewRecord returns a closed record device over store.
func NewRecord(ctx context.Context, store kv.Store) *Record {
	return &Record{ctx: ctx, store: store}
}

// OpenRecord opens the named record in store.
func OpenRecord(ctx context.Context, store kv.Store, name string, mode OpenMode) (*Record, error) {
	d := NewRecord(ctx, store)
	if err := d.Open(name, mode); err != nil {
		return nil, err
	}
	return d, nil
}

// Open loads the named record. A missing record is created empty when mode
// includes Out and is an error otherwise.
func (d *Record) Open(name string, mode OpenMode) error {
	if mode&(In|Out) == 0 {
		return &Error{Op: "open", Name: name, Err: errors.New("mode neither reads nor writes")}
	}
	if d.IsOpen() {
		if err := d.Close(); err != nil {
			return err
		}
	}
	data, err := d.store.Load(d.ctx, name)
	switch {
	case errors.Is(err, kv.ErrNotFound) && mode.Has(Out):
		data = nil
		d.dirty = true
	case err != nil:
		return wrapErr("open", name, err)
	default:
		d.dirty = mode.Has(Truncate)
	}
	d.c = NewContainer(data, mode)
	d.name = name
	return nil
}

// IsOpen reports whether a record is loaded.
func (d *Record) IsOpen() bool { return d.c != nil }

// Name returns the record name.
func (d *Record) Name() string { return d.name }

// Read reads from the record.
func (d *Record) Read(p []byte) (int, error) {
	mustOpen(d.IsOpen(), "record", "read")
	return d.c.Read(p)
}

// Write writes into the record.
func (d *Record) Write(p []byte) (int, error) {
	mustOpen(d.IsOpen(), "record", "write")
	d.dirty = true
	return d.c.Write(p)
}

// Seek moves the cursor within the record.
func (d *Record) Seek(offset int64, whence Whence) (int64, error) {
	mustOpen(d.IsOpen(), "record", "seek")
	size := d.c.Len()
	pos, err := d.c.Seek(offset, whence)
	if d.c.Len() != size {
		d.dirty = true
	}
	return pos, err
}

// Flush saves the record if it changed since it was loaded or last saved.
func (d *Record) Flush() error {
	mustOpen(d.IsOpen(), "record", "flush")
	if !d.dirty {
		return nil
	}
	if err := d.store.Save(d.ctx, d.name, d.c.Bytes()); err != nil {
		return wrapErr("save", d.name, err)
	}
	d.dirty = false
	return nil
}

// Close saves pending changes and unloads the record.
func (d *Record) Close() error {
	if !d.IsOpen() {
		return nil
	}
	err := d.Flush()
	d.c = nil
	return err
}
