package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/haivivi/tio/pkg/buffer"
	"github.com/haivivi/tio/pkg/device"
	"github.com/haivivi/tio/pkg/kv"
	"github.com/haivivi/tio/pkg/storage"
	"github.com/haivivi/tio/pkg/stream"
)

const defaultRegion = "us-east-1"

// StreamOptions returns the stream options for the context's stream
// settings. An empty mode keeps the stream default.
func (ctx *Context) StreamOptions(logger *slog.Logger) ([]stream.Option, error) {
	var opts []stream.Option
	sc := ctx.Stream
	if sc.Mode != "" {
		mode, err := buffer.ParseMode(sc.Mode)
		if err != nil {
			return nil, err
		}
		if mode == buffer.ModeExternal {
			return nil, fmt.Errorf("stream.mode: external buffering needs caller storage")
		}
		opts = append(opts, stream.WithMode(mode))
	}
	if sc.BufferSize > 0 {
		opts = append(opts, stream.WithBufferSize(sc.BufferSize))
	}
	if sc.Pushback > 0 {
		opts = append(opts, stream.WithPushback(sc.Pushback))
	}
	if sc.BoolAlpha != nil {
		opts = append(opts, stream.WithBoolAlpha(*sc.BoolAlpha))
	}
	if logger != nil {
		opts = append(opts, stream.WithLogger(logger))
	}
	return opts, nil
}

// Locale returns the context's text locale. An empty setting is the C
// locale.
func (ctx *Context) Locale() (device.Locale, error) {
	if ctx.Stream.Locale == "" {
		return device.Locale{}, nil
	}
	return device.LocaleOf(ctx.Stream.Locale)
}

// OpenStorage opens the context's object store. Relative local roots are
// resolved against base; an empty root selects the object directory under
// base. An empty base is ~/.tio.
func (ctx *Context) OpenStorage(base string) (storage.Store, error) {
	switch ctx.Store {
	case "", "local":
		paths, err := PathsAt(base)
		if err != nil {
			return nil, err
		}
		root := paths.ObjectDir()
		if ctx.Root != "" {
			root = paths.Resolve(ctx.Root)
		}
		return storage.NewLocal(root)
	case "s3":
		if ctx.S3 == nil || ctx.S3.Bucket == "" {
			return nil, fmt.Errorf("store s3: bucket is not configured")
		}
		return storage.NewS3(ctx.S3.client(), ctx.S3.Bucket, ctx.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store %q", ctx.Store)
	}
}

// OpenKV opens the context's record store. The caller must close it.
func (ctx *Context) OpenKV(base string, logger *slog.Logger) (kv.Store, error) {
	switch ctx.KV {
	case "", "badger":
		paths, err := PathsAt(base)
		if err != nil {
			return nil, err
		}
		dir := paths.KVDir()
		if ctx.KVDir != "" {
			dir = paths.Resolve(ctx.KVDir)
		} else if err := paths.EnsureDataDir(); err != nil {
			return nil, err
		}
		return kv.NewBadger(kv.BadgerOptions{
			Dir:    dir,
			Logger: logger,
		})
	case "memory":
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown kv %q", ctx.KV)
	}
}

func (s *S3Config) client() *s3.Client {
	opts := s3.Options{
		Region:       s.Region,
		UsePathStyle: s.PathStyle,
		Credentials:  s.credentials(),
	}
	if opts.Region == "" {
		opts.Region = defaultRegion
	}
	if s.Endpoint != "" {
		opts.BaseEndpoint = aws.String(s.Endpoint)
	}
	return s3.New(opts)
}

func (s *S3Config) credentials() aws.CredentialsProvider {
	ak, sk := s.AccessKey, s.SecretKey
	if ak == "" {
		ak = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if sk == "" {
		sk = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if ak == "" || sk == "" {
		return aws.AnonymousCredentials{}
	}
	return aws.NewCredentialsCache(aws.CredentialsProviderFunc(
		func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     ak,
				SecretAccessKey: sk,
				Source:          "tio",
			}, nil
		}))
}
