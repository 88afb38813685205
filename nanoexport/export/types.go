package export

import (
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/arthur-debert/nanoexport/internal/validation"
)

// Request describes a single export invocation.
// It is built by the caller and consumed exactly once.
type Request struct {
	// ExportType selects the entry extension ("json" or "csv")
	ExportType string `json:"export_type" yaml:"export_type"`

	// Path is the destination directory; it must already exist
	Path string `json:"export_path" yaml:"export_path"`

	// IsZip selects the archive sink. Required: nil fails validation.
	IsZip *bool `json:"is_zip,omitempty" yaml:"is_zip,omitempty"`

	// ZipName names the archive when IsZip is true. Defaults to "export".
	ZipName *string `json:"zip_name,omitempty" yaml:"zip_name,omitempty"`

	// Data maps entry names to their text content
	Data map[string]string `json:"data" yaml:"data"`
}

// archiveName returns the requested archive name or the default
func (r *Request) archiveName() string {
	if r.ZipName == nil || *r.ZipName == "" {
		return DefaultArchiveName
	}
	return *r.ZipName
}

// Compression selects how archive members are compressed
type Compression string

const (
	// Zstd stores members with Zstandard (zip method 93)
	Zstd Compression = "zstd"
	// Deflate stores members with the classic zip deflate method
	Deflate Compression = "deflate"
	// Store writes members uncompressed
	Store Compression = "store"
)

// ParseCompression converts a configuration string into a Compression.
// An empty string yields Zstd.
func ParseCompression(s string) (Compression, error) {
	switch Compression(strings.ToLower(strings.TrimSpace(s))) {
	case "", Zstd:
		return Zstd, nil
	case Deflate:
		return Deflate, nil
	case Store:
		return Store, nil
	default:
		return "", fmt.Errorf("invalid compression %q: must be one of zstd, deflate, store", s)
	}
}

// DefaultFileMode is the permission used for plain exported files
const DefaultFileMode fs.FileMode = 0644

// MemberMode is the Unix permission recorded on every archive member
const MemberMode fs.FileMode = 0755

// Options configures a Coordinator
type Options struct {
	// FS is the file system to write to. Defaults to OSFileSystem.
	FS FileSystem

	// Logger receives state transitions and outcomes. Defaults to slog.Default().
	Logger *slog.Logger

	// Compression for archive members. Defaults to Zstd.
	Compression Compression

	// NamePolicy for entry and archive names. Defaults to validation.RejectUnsafe.
	NamePolicy validation.NamePolicy

	// Atomic writes to temporary names and renames into place only after
	// every entry succeeded. Off by default.
	Atomic bool

	// FileMode for plain exported files. Defaults to DefaultFileMode.
	FileMode fs.FileMode

	// Now stamps archive member modification times. Defaults to time.Now.
	Now func() time.Time

	// newArchive overrides the archive writer, for tests
	newArchive archiveFactory
}

// withDefaults validates the options and fills in defaults
func (o Options) withDefaults() (Options, error) {
	if o.FS == nil {
		o.FS = OSFileSystem{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	compression, err := ParseCompression(string(o.Compression))
	if err != nil {
		return o, err
	}
	o.Compression = compression

	policy, err := validation.ParseNamePolicy(string(o.NamePolicy))
	if err != nil {
		return o, err
	}
	o.NamePolicy = policy

	if o.FileMode == 0 {
		o.FileMode = DefaultFileMode
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.newArchive == nil {
		o.newArchive = newZipArchive
	}
	return o, nil
}

// State is a step of a single export invocation
type State int

const (
	StateCreated State = iota
	StateValidating
	StateWritingEntries
	StateFinalizing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateValidating:
		return "validating"
	case StateWritingEntries:
		return "writing-entries"
	case StateFinalizing:
		return "finalizing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is delivered by Coordinator.Go
type Result struct {
	Value string // Success when Err is nil
	Err   error
}
