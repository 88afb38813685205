package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NamePolicy controls how entry and archive names are checked before writing
type NamePolicy string

const (
	// RejectUnsafe refuses names that could resolve outside the destination directory
	RejectUnsafe NamePolicy = "reject"

	// AllowAll performs no checks; names are joined to the destination as given
	AllowAll NamePolicy = "allow"
)

// ParseNamePolicy converts a configuration string into a NamePolicy.
// An empty string yields RejectUnsafe.
func ParseNamePolicy(s string) (NamePolicy, error) {
	switch NamePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RejectUnsafe:
		return RejectUnsafe, nil
	case AllowAll:
		return AllowAll, nil
	default:
		return "", fmt.Errorf("invalid name policy %q: must be %q or %q", s, RejectUnsafe, AllowAll)
	}
}

// CheckName validates a single entry or archive name under the given policy
func CheckName(name string, policy NamePolicy) error {
	if policy == AllowAll {
		return nil
	}

	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("name %q is not a file name", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("name %q contains a NUL byte", name)
	}
	// Both separators are refused regardless of OS, since exports move between systems
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name %q contains a path separator", name)
	}
	if filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("name %q is an absolute path", name)
	}

	return nil
}
