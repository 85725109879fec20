// Package tracefs instruments a filesystem for distributed tracing operations.
// The OpenTelemetry API is supported.
//
// This is not strictly a filesystem implementation, but rather a wrapper
// around an existing [cutty.Filesystem].
//
// # Usage
//
// To use this filesystem, call [New] with a base filesystem. All operations on
// the returned filesystem will be instrumented. Wrap the filesystem of a
// resolved template's tree to trace how the template is read:
//
//	traced := tracefs.New(ctx, pkg.Tree.Filesystem())
//	tree := cutty.Root(traced).JoinPath(pkg.Tree.PurePath())
//
// In order to report traces, an OTel [trace.TracerProvider] must first be set
// up. The details of this are outside the scope of this module, but see the
// tmplcli example in this repository's examples directory for one approach.
//
// A [trace.TracerProvider] can optionally be passed to [New] using
// [WithTracerProvider].
package tracefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"

	"github.com/cjolowicz/cutty-sub001"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type traceFS struct {
	ctx    context.Context
	fsys   cutty.Filesystem
	tracer trace.Tracer
}

const tracerName = "github.com/cjolowicz/cutty-sub001/tracefs"

// New returns a filesystem that instruments the given filesystem, adding
// trace spans for each operation. The given context will be used as the
// parent of every span. Options can be provided to configure the behaviour of
// the instrumented filesystem.
//
// The returned filesystem passes Commit, ComparePaths and Close through to the
// wrapped filesystem where it supports them.
func New(ctx context.Context, fsys cutty.Filesystem, opts ...Option) cutty.Filesystem {
	cfg := config{}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}

	return &traceFS{
		ctx:    ctx,
		fsys:   fsys,
		tracer: cfg.tp.Tracer(tracerName),
	}
}

var (
	_ cutty.Filesystem   = (*traceFS)(nil)
	_ cutty.Committer    = (*traceFS)(nil)
	_ cutty.PathComparer = (*traceFS)(nil)
	_ io.Closer          = (*traceFS)(nil)
)

func (f *traceFS) start(op string, p cutty.PurePath) trace.Span {
	_, span := f.tracer.Start(f.ctx, op, trace.WithAttributes(
		Path(p.String()),
		Type(fmt.Sprintf("%T", f.fsys)),
	))

	return span
}

func infoAttributes(span trace.Span, fi fs.FileInfo) {
	if fi == nil {
		return
	}

	span.SetAttributes(
		FileSize(fi.Size()),
		FilePerms(fi.Mode().String()),
		FileModTime(fi.ModTime()),
	)
}

func (f *traceFS) Stat(p cutty.PurePath) (fs.FileInfo, error) {
	span := f.start("fs.Stat", p)
	defer span.End()

	fi, err := f.fsys.Stat(p)
	infoAttributes(span, fi)

	return fi, recordError(span, err)
}

func (f *traceFS) Lstat(p cutty.PurePath) (fs.FileInfo, error) {
	span := f.start("fs.Lstat", p)
	defer span.End()

	fi, err := f.fsys.Lstat(p)
	infoAttributes(span, fi)

	return fi, recordError(span, err)
}

// Iterdir records one span for each iteration over the directory, covering
// the whole iteration.
func (f *traceFS) Iterdir(p cutty.PurePath) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		span := f.start("fs.Iterdir", p)
		defer span.End()

		n := 0

		defer func() { span.SetAttributes(DirEntries(n)) }()

		for name, err := range f.fsys.Iterdir(p) {
			if err != nil {
				_ = recordError(span, err)
			} else {
				n++
			}

			if !yield(name, err) {
				return
			}
		}
	}
}

func (f *traceFS) ReadBytes(p cutty.PurePath) ([]byte, error) {
	span := f.start("fs.ReadBytes", p)
	defer span.End()

	b, err := f.fsys.ReadBytes(p)

	span.SetAttributes(FileBytesRead(len(b)))

	return b, recordError(span, err)
}

func (f *traceFS) Readlink(p cutty.PurePath) (string, error) {
	span := f.start("fs.Readlink", p)
	defer span.End()

	target, err := f.fsys.Readlink(p)
	if err == nil {
		span.SetAttributes(LinkTarget(target))
	}

	return target, recordError(span, err)
}

func (f *traceFS) Access(p cutty.PurePath, mode cutty.AccessMode) bool {
	span := f.start("fs.Access", p)
	defer span.End()

	ok := f.fsys.Access(p, mode)

	span.SetAttributes(AccessMode(int(mode)), AccessGranted(ok))

	return ok
}

// Commit returns the wrapped filesystem's commit, or nil if it has none.
func (f *traceFS) Commit() *cutty.Commit {
	if c, ok := f.fsys.(cutty.Committer); ok {
		return c.Commit()
	}

	return nil
}

func (f *traceFS) ComparePaths(a, b cutty.PurePath) int {
	return cutty.ComparePaths(f.fsys, a, b)
}

// Close closes the wrapped filesystem, if it can be closed.
func (f *traceFS) Close() error {
	c, ok := f.fsys.(io.Closer)
	if !ok {
		return nil
	}

	_, span := f.tracer.Start(f.ctx, "fs.Close", trace.WithAttributes(Type(fmt.Sprintf("%T", f.fsys))))
	defer span.End()

	return recordError(span, c.Close())
}

// recordError records the given error on the span, and returns it. Errors
// that only report a missing file don't mark the span as failed, since
// probing for files is routine.
func recordError(span trace.Span, err error) error {
	if err == nil {
		return nil
	}

	span.RecordError(err)

	if !errors.Is(err, fs.ErrNotExist) {
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
