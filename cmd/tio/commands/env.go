package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/haivivi/tio/pkg/cli"
	"github.com/haivivi/tio/pkg/device"
	"github.com/haivivi/tio/pkg/kv"
	"github.com/haivivi/tio/pkg/storage"
	"github.com/haivivi/tio/pkg/stream"
)

// Where data named on the command line lives.
const (
	kindFile   = "file"
	kindObject = "object"
	kindRecord = "record"
)

func validateKind(kind string) error {
	switch kind {
	case kindFile, kindObject, kindRecord:
		return nil
	}
	return fmt.Errorf("unknown kind %q (want file, object or record)", kind)
}

var errAppendUnsupported = errors.New("objects cannot be appended to")

// testKVOverride replaces the context's record store in tests.
var testKVOverride kv.Store

// env is what a command needs from the resolved context.
type env struct {
	ctx    *cli.Context
	store  storage.Store
	kv     kv.Store
	ownKV  bool
	opts   []stream.Option
	loc    device.Locale
	hasLoc bool
}

// openEnv resolves the context and opens the store the kind needs. locale
// overrides the context's locale when not empty.
func openEnv(kind, locale string) (*env, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		return nil, err
	}
	e := &env{ctx: ctx}

	e.opts, err = ctx.StreamOptions(slog.Default())
	if err != nil {
		return nil, err
	}
	if locale == "" {
		locale = ctx.Stream.Locale
	}
	if locale != "" {
		e.loc, err = device.LocaleOf(locale)
		if err != nil {
			return nil, err
		}
		e.hasLoc = true
	}

	switch kind {
	case kindObject:
		e.store, err = ctx.OpenStorage(cfg.Dir())
		if err != nil {
			return nil, err
		}
	case kindRecord:
		if testKVOverride != nil {
			e.kv = testKVOverride
			break
		}
		e.kv, err = ctx.OpenKV(cfg.Dir(), slog.Default())
		if err != nil {
			return nil, err
		}
		e.ownKV = true
	}
	return e, nil
}

func (e *env) close() error {
	if e.ownKV {
		return e.kv.Close()
	}
	return nil
}

// copyChunk is the unit pipe moves between streams.
const copyChunk = 32 * 1024

// pipe copies src to dst until src reaches the end of its input.
func pipe[S device.Reader, D device.Writer](src *stream.Stream[S], dst *stream.Stream[D]) (int64, error) {
	buf := make([]byte, copyChunk)
	var total int64
	for {
		n, err := stream.Read(src, buf)
		if n > 0 {
			w, werr := stream.Write(dst, buf[:n])
			total += int64(w)
			if werr != nil {
				return total, werr
			}
		}
		if src.EOF() {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// withStream builds a stream over dev, runs fn and releases the stream.
// Release errors are reported unless fn failed first.
func withStream[D device.Device](dev D, opts []stream.Option, fn func(*stream.Stream[D]) error) error {
	s, err := stream.New(dev, opts...)
	if err != nil {
		return err
	}
	err = fn(s)
	if rerr := s.Release(); err == nil {
		err = rerr
	}
	return err
}

// errClosed joins err with the error of closing c.
func errClosed(err error, c interface{ Close() error }) error {
	return errors.Join(err, c.Close())
}
