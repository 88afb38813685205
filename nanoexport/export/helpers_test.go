package export

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestCoordinator(t *testing.T, opts Options) *Coordinator {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("failed to create coordinator: %v", err)
	}
	return c
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// fakeArchive fails at a chosen step
type fakeArchive struct {
	createErr error
	writeErr  error
	closeErr  error
	members   []string
	closed    bool
}

func (f *fakeArchive) Create(name string) (io.Writer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.members = append(f.members, name)
	return failingWriter{err: f.writeErr}, nil
}

func (f *fakeArchive) Close() error {
	f.closed = true
	return f.closeErr
}

func (f *fakeArchive) factory() archiveFactory {
	return func(io.Writer, Compression, time.Time) archiveWriter { return f }
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	return len(p), nil
}

var errInjected = errors.New("injected failure")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
