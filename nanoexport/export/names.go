package export

import (
	"sort"
	"strings"
)

// ArchiveExtension is appended to archive names that lack it
const ArchiveExtension = ".zip"

// DefaultArchiveName is used when a request does not name its archive
const DefaultArchiveName = "export"

// Normalize appends suffix to name unless name already ends with it.
// It does not deduplicate or sanitize; see validation.CheckName for that.
func Normalize(name, suffix string) string {
	if strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}

// sortedNames returns the payload keys in a stable order
func sortedNames(data map[string]string) []string {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
