package export

import (
	"archive/zip"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// archiveWriter is the member-level view of an archive being written
type archiveWriter interface {
	// Create opens a new member; the previous member is finished implicitly
	Create(name string) (io.Writer, error)

	// Close writes the central directory. It does not close the underlying file.
	Close() error
}

type archiveFactory func(w io.Writer, compression Compression, modified time.Time) archiveWriter

// zipArchive writes members with a fixed method and mode
type zipArchive struct {
	zw       *zip.Writer
	method   uint16
	modified time.Time
}

func newZipArchive(w io.Writer, compression Compression, modified time.Time) archiveWriter {
	zw := zip.NewWriter(w)

	var method uint16
	switch compression {
	case Deflate:
		method = zip.Deflate
	case Store:
		method = zip.Store
	default:
		method = zstd.ZipMethodWinZip
		zw.RegisterCompressor(method, zstd.ZipCompressor())
	}

	return &zipArchive{zw: zw, method: method, modified: modified}
}

func (a *zipArchive) Create(name string) (io.Writer, error) {
	header := &zip.FileHeader{
		Name:     name,
		Method:   a.method,
		Modified: a.modified,
	}
	header.SetMode(MemberMode)
	return a.zw.CreateHeader(header)
}

func (a *zipArchive) Close() error {
	return a.zw.Close()
}

// ArchiveSink writes all entries as members of one archive file
type ArchiveSink struct {
	fs          FileSystem
	extension   string
	compression Compression
	atomic      bool
	now         func() time.Time
	newArchive  archiveFactory
	logger      *slog.Logger
}

// Write creates dir/<archiveName>.zip holding one member per entry and
// returns the normalized archive name. Any failure aborts without
// finalizing; the archive file may remain and must be treated as invalid,
// unless the sink is atomic, in which case nothing is left behind.
func (s *ArchiveSink) Write(dir, archiveName string, data map[string]string) (string, error) {
	name := Normalize(archiveName, ArchiveExtension)
	final := filepath.Join(dir, name)
	target := final
	if s.atomic {
		target = filepath.Join(dir, tempName(name))
	}

	file, err := s.fs.Create(target)
	if err != nil {
		return "", newError(KindFileSystem, name, err)
	}

	abort := func(err *Error) (string, error) {
		if closeErr := file.Close(); closeErr != nil {
			s.logger.Warn("failed to close archive file", "file", target, "error", closeErr)
		}
		s.discard(target)
		return "", err
	}

	archive := s.newArchive(file, s.compression, s.now())
	for _, entry := range sortedNames(data) {
		memberName := Normalize(entry, s.extension)

		w, err := archive.Create(memberName)
		if err != nil {
			return abort(newError(KindArchiveWrite, memberName, err))
		}
		if _, err := io.WriteString(w, data[entry]); err != nil {
			return abort(newError(KindArchiveEntry, memberName, err))
		}
		s.logger.Debug("member written", "archive", name, "member", memberName, "bytes", len(data[entry]))
	}

	s.logger.Debug("finalizing archive", "archive", name, "state", StateFinalizing)
	if err := archive.Close(); err != nil {
		return abort(newError(KindArchiveFinalize, name, err))
	}
	if err := file.Close(); err != nil {
		s.discard(target)
		return "", newError(KindArchiveFinalize, name, err)
	}

	if s.atomic {
		if err := s.fs.Rename(target, final); err != nil {
			s.discard(target)
			return "", newError(KindArchiveFinalize, name, err)
		}
	}

	return name, nil
}

// discard removes a staged archive after a failure. Non-atomic sinks leave
// the file where it is.
func (s *ArchiveSink) discard(target string) {
	if !s.atomic {
		return
	}
	if err := s.fs.Remove(target); err != nil {
		s.logger.Warn("failed to remove staged archive", "file", target, "error", err)
	}
}
