// Package export writes named text payloads to a destination directory,
// either as one file per entry or as members of a single zip archive.
//
// An export runs in three steps:
// 1. Validate the request (destination, archive-mode flag, export type, names)
// 2. Dispatch to the file sink or the archive sink
// 3. Report Success or a typed *Error whose Code is the wire-level string
//
// The engine never reads or transforms entry content. Invocations share no
// in-process state and take no locks: concurrent exports to the same path
// race at the file system level.
package export

import (
	"log/slog"
	"time"
)

// Coordinator is the single entry point of the export engine.
// It is safe for concurrent use.
type Coordinator struct {
	opts Options
}

// New creates a Coordinator, applying defaults to the zero fields of opts
func New(opts Options) (*Coordinator, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Coordinator{opts: opts}, nil
}

// Export validates req and writes its entries. It returns Success, or the
// first error encountered, unchanged, as an *Error.
//
// Example usage:
//
//	zip := true
//	result, err := coordinator.Export(&export.Request{
//	    ExportType: "json",
//	    Path:       "/tmp/out",
//	    IsZip:      &zip,
//	    Data:       map[string]string{"a": "1", "b": "2"},
//	})
func (c *Coordinator) Export(req *Request) (string, error) {
	start := time.Now()
	logger := c.opts.Logger.With("export_type", req.ExportType, "path", req.Path, "entries", len(req.Data))
	logger.Debug("export state", "state", StateValidating)

	exportType, err := Validate(c.opts.FS, req, c.opts.NamePolicy)
	if err != nil {
		return c.fail(logger, err)
	}

	if !exportType.Writes {
		logger.Warn("export type accepted but writes nothing", "state", StateSucceeded)
		return Success, nil
	}

	logger.Debug("export state", "state", StateWritingEntries, "archive", *req.IsZip)
	if *req.IsZip {
		sink := &ArchiveSink{
			fs:          c.opts.FS,
			extension:   exportType.Extension,
			compression: c.opts.Compression,
			atomic:      c.opts.Atomic,
			now:         c.opts.Now,
			newArchive:  c.opts.newArchive,
			logger:      logger,
		}
		name, err := sink.Write(req.Path, req.archiveName(), req.Data)
		if err != nil {
			return c.fail(logger, err)
		}
		logger.Info("export complete", "state", StateSucceeded, "archive", name, "duration", time.Since(start))
		return Success, nil
	}

	sink := &FileSink{
		fs:        c.opts.FS,
		extension: exportType.Extension,
		mode:      c.opts.FileMode,
		atomic:    c.opts.Atomic,
		logger:    logger,
	}
	written, err := sink.Write(req.Path, req.Data)
	if err != nil {
		return c.fail(logger, err, "written", written)
	}
	logger.Info("export complete", "state", StateSucceeded, "files", written, "duration", time.Since(start))
	return Success, nil
}

// Go runs Export on its own goroutine. The returned channel receives
// exactly one Result and is then closed.
func (c *Coordinator) Go(req *Request) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		defer close(results)
		value, err := c.Export(req)
		results <- Result{Value: value, Err: err}
	}()
	return results
}

func (c *Coordinator) fail(logger *slog.Logger, err error, attrs ...any) (string, error) {
	args := append([]any{"state", StateFailed, "kind", KindOf(err), "code", CodeOf(err), "error", err}, attrs...)
	logger.Error("export failed", args...)
	return "", err
}
