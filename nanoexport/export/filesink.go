package export

import (
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
)

// FileSink writes each entry as a standalone file in the destination directory
type FileSink struct {
	fs        FileSystem
	extension string
	mode      fs.FileMode
	atomic    bool
	logger    *slog.Logger
}

// Write stores every entry under dir, overwriting existing files.
// The first failure aborts; files already written stay on disk unless the
// sink is atomic. It returns the normalized names that were written.
func (s *FileSink) Write(dir string, data map[string]string) ([]string, error) {
	if s.atomic {
		return s.writeAtomic(dir, data)
	}

	written := make([]string, 0, len(data))
	for _, name := range sortedNames(data) {
		fileName := Normalize(name, s.extension)
		if err := s.fs.WriteFile(filepath.Join(dir, fileName), []byte(data[name]), s.mode); err != nil {
			return written, newError(KindIO, fileName, err)
		}
		s.logger.Debug("entry written", "file", fileName, "bytes", len(data[name]))
		written = append(written, fileName)
	}
	return written, nil
}

// writeAtomic stages every entry under a temporary name and renames them
// into place only once all writes succeeded
func (s *FileSink) writeAtomic(dir string, data map[string]string) ([]string, error) {
	type staged struct {
		temp, final, name string
	}

	names := sortedNames(data)
	pending := make([]staged, 0, len(names))
	cleanup := func() {
		for _, p := range pending {
			if err := s.fs.Remove(p.temp); err != nil {
				s.logger.Warn("failed to remove staged file", "file", p.temp, "error", err)
			}
		}
	}

	for _, name := range names {
		fileName := Normalize(name, s.extension)
		temp := filepath.Join(dir, tempName(fileName))
		if err := s.fs.WriteFile(temp, []byte(data[name]), s.mode); err != nil {
			cleanup()
			return nil, newError(KindIO, fileName, err)
		}
		pending = append(pending, staged{temp: temp, final: filepath.Join(dir, fileName), name: fileName})
	}

	written := make([]string, 0, len(pending))
	for i, p := range pending {
		if err := s.fs.Rename(p.temp, p.final); err != nil {
			pending = pending[i:]
			cleanup()
			return written, newError(KindIO, p.name, err)
		}
		s.logger.Debug("entry written", "file", p.name, "bytes", len(data[names[i]]))
		written = append(written, p.name)
	}
	return written, nil
}

// tempName returns a hidden sibling name used while staging name
func tempName(name string) string {
	return "." + name + "." + uuid.NewString() + ".tmp"
}
