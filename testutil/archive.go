// Package testutil provides helpers for asserting on export output.
package testutil

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// Member is one decoded archive member
type Member struct {
	Content string
	Method  uint16
	Mode    fs.FileMode
}

// ReadArchive opens a zip archive and returns its members by name.
// Zstandard members (method 93) are decoded.
func ReadArchive(t testing.TB, path string) map[string]Member {
	t.Helper()

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive %s: %v", path, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			t.Errorf("failed to close archive: %v", err)
		}
	}()
	reader.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	members := make(map[string]Member, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("failed to open member %s: %v", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("failed to read member %s: %v", file.Name, err)
		}
		members[file.Name] = Member{
			Content: string(content),
			Method:  file.Method,
			Mode:    file.Mode(),
		}
	}
	return members
}

// ArchiveContents returns member contents by name
func ArchiveContents(t testing.TB, path string) map[string]string {
	t.Helper()

	contents := make(map[string]string)
	for name, member := range ReadArchive(t, path) {
		contents[name] = member.Content
	}
	return contents
}

// DirContents returns the content of every regular file directly under dir
func DirContents(t testing.TB, dir string) map[string]string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read directory %s: %v", dir, err)
	}

	contents := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			t.Fatalf("failed to read %s: %v", entry.Name(), err)
		}
		contents[entry.Name()] = string(data)
	}
	return contents
}

// Bool returns a pointer to b, for optional request fields
func Bool(b bool) *bool {
	return &b
}

// String returns a pointer to s, for optional request fields
func String(s string) *string {
	return &s
}
