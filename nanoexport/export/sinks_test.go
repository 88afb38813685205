package export

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newMockDest() *MockFileSystem {
	fsys := NewMockFileSystem()
	fsys.AddDir("/out")
	return fsys
}

func TestFileSinkStopsAtFirstFailure(t *testing.T) {
	fsys := newMockDest()
	fsys.WriteFileErrors["/out/b.json"] = os.ErrPermission
	c := newTestCoordinator(t, Options{FS: fsys})

	_, err := c.Export(&Request{
		ExportType: "json",
		Path:       "/out",
		IsZip:      boolPtr(false),
		Data:       map[string]string{"a": "1", "b": "2", "c": "3"},
	})
	if !IsKind(err, KindIO) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("expected underlying permission error, got %v", err)
	}
	if code := CodeOf(err); !strings.Contains(code, "permission denied") {
		t.Errorf("code should carry the I/O message, got %q", code)
	}

	// Entries are written in name order; a.json stays, c.json is never attempted
	if diff := cmp.Diff([]string{"/out/a.json"}, fsys.Files()); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSinkAtomicRollsBack(t *testing.T) {
	fsys := newMockDest()
	calls := 0
	// Staged names are random, so fail on the second staged write
	failing := &countingFS{MockFileSystem: fsys, failAfter: 1, calls: &calls}
	sink := &FileSink{fs: failing, extension: ".json", mode: DefaultFileMode, atomic: true, logger: discardLogger()}

	_, err := sink.Write("/out", map[string]string{"a": "1", "b": "2"})
	if !IsKind(err, KindIO) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if files := fsys.Files(); len(files) != 0 {
		t.Errorf("expected no files after rollback, got %v", files)
	}
}

func TestFileSinkAtomicRenameFailure(t *testing.T) {
	fsys := newMockDest()
	fsys.RenameError = os.ErrPermission
	sink := &FileSink{fs: fsys, extension: ".json", mode: DefaultFileMode, atomic: true, logger: discardLogger()}

	_, err := sink.Write("/out", map[string]string{"a": "1"})
	if !IsKind(err, KindIO) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if files := fsys.Files(); len(files) != 0 {
		t.Errorf("staged files left behind: %v", files)
	}
}

func TestArchiveSinkCreateFailure(t *testing.T) {
	fsys := newMockDest()
	fsys.CreateError = os.ErrPermission
	c := newTestCoordinator(t, Options{FS: fsys})

	_, err := c.Export(&Request{ExportType: "json", Path: "/out", IsZip: boolPtr(true), Data: map[string]string{"a": "1"}})
	if CodeOf(err) != "file-system-error" {
		t.Fatalf("expected file-system-error, got %v", err)
	}
	if files := fsys.Files(); len(files) != 0 {
		t.Errorf("unexpected files: %v", files)
	}
}

func TestArchiveSinkFailureKinds(t *testing.T) {
	tests := []struct {
		name        string
		archive     *fakeArchive
		closeErr    error
		wantKind    Kind
		wantCode    string
		wantClosed  bool
		wantMembers []string
	}{
		{
			name:        "member open",
			archive:     &fakeArchive{createErr: errInjected},
			wantKind:    KindArchiveWrite,
			wantCode:    "error-writing-zip",
			wantMembers: nil,
		},
		{
			name:        "member write",
			archive:     &fakeArchive{writeErr: errInjected},
			wantKind:    KindArchiveEntry,
			wantCode:    "error-creating-zip",
			wantMembers: []string{"a.json"},
		},
		{
			name:        "finalize",
			archive:     &fakeArchive{closeErr: errInjected},
			wantKind:    KindArchiveFinalize,
			wantCode:    "failed-to-generate-zip",
			wantClosed:  true,
			wantMembers: []string{"a.json", "b.json"},
		},
		{
			name:        "file close",
			archive:     &fakeArchive{},
			closeErr:    errInjected,
			wantKind:    KindArchiveFinalize,
			wantCode:    "failed-to-generate-zip",
			wantClosed:  true,
			wantMembers: []string{"a.json", "b.json"},
		},
	}

	for _, tt := range tests {
		for _, atomic := range []bool{false, true} {
			name := tt.name
			if atomic {
				name += " atomic"
			}
			t.Run(name, func(t *testing.T) {
				fsys := newMockDest()
				fsys.CloseError = tt.closeErr
				c := newTestCoordinator(t, Options{FS: fsys, Atomic: atomic, newArchive: tt.archive.factory()})
				tt.archive.members = nil
				tt.archive.closed = false

				_, err := c.Export(&Request{
					ExportType: "json",
					Path:       "/out",
					IsZip:      boolPtr(true),
					Data:       map[string]string{"a": "1", "b": "2"},
				})
				if !IsKind(err, tt.wantKind) {
					t.Fatalf("expected %v, got %v", tt.wantKind, err)
				}
				if CodeOf(err) != tt.wantCode {
					t.Errorf("code = %q, want %q", CodeOf(err), tt.wantCode)
				}
				if !errors.Is(err, errInjected) {
					t.Errorf("cause not preserved: %v", err)
				}
				if tt.archive.closed != tt.wantClosed {
					t.Errorf("archive finalized = %v, want %v", tt.archive.closed, tt.wantClosed)
				}
				if diff := cmp.Diff(tt.wantMembers, tt.archive.members); diff != "" {
					t.Errorf("members mismatch (-want +got):\n%s", diff)
				}

				// Non-atomic exports leave the invalid archive in place, atomic ones clean up
				var wantFiles []string
				if !atomic {
					wantFiles = []string{"/out/export.zip"}
				}
				if diff := cmp.Diff(wantFiles, nonEmpty(fsys.Files())); diff != "" {
					t.Errorf("files mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestArchiveSinkAtomicRenameFailure(t *testing.T) {
	fsys := newMockDest()
	fsys.RenameError = os.ErrPermission
	c := newTestCoordinator(t, Options{FS: fsys, Atomic: true})

	_, err := c.Export(&Request{ExportType: "json", Path: "/out", IsZip: boolPtr(true), Data: map[string]string{"a": "1"}})
	if !IsKind(err, KindArchiveFinalize) {
		t.Fatalf("expected ArchiveFinalizeError, got %v", err)
	}
	if files := fsys.Files(); len(files) != 0 {
		t.Errorf("staged archive left behind: %v", files)
	}
}

func TestArchiveSinkWritesThroughMock(t *testing.T) {
	fsys := newMockDest()
	c := newTestCoordinator(t, Options{FS: fsys})

	if _, err := c.Export(&Request{ExportType: "json", Path: "/out", IsZip: boolPtr(true), ZipName: stringPtr("b"), Data: map[string]string{"a": "1"}}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	content, ok := fsys.Content("/out/b.zip")
	if !ok {
		t.Fatal("archive not written")
	}
	if !strings.HasPrefix(content, "PK") {
		t.Error("archive does not start with a zip signature")
	}
}

// countingFS fails WriteFile after failAfter successful calls
type countingFS struct {
	*MockFileSystem
	failAfter int
	calls     *int
}

func (c *countingFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	*c.calls++
	if *c.calls > c.failAfter {
		return os.ErrPermission
	}
	return c.MockFileSystem.WriteFile(name, data, perm)
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
