package formats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ExportType describes one value accepted in an export request's export_type
type ExportType struct {
	// Name is the identifier used on the wire (lowercase alphanumeric, dashes, underscores)
	Name string

	// Extension is the file extension including the dot (e.g., ".json")
	Extension string

	// Writes reports whether exports of this type materialize entries.
	// Types registered with Writes=false pass validation but produce no output.
	Writes bool
}

var (
	mu       sync.RWMutex
	registry = make(map[string]*ExportType)
)

// JSON is the fully supported export type
var JSON = &ExportType{
	Name:      "json",
	Extension: ".json",
	Writes:    true,
}

// CSV is accepted by validation but nothing is written for it yet
var CSV = &ExportType{
	Name:      "csv",
	Extension: ".csv",
	Writes:    false,
}

func init() {
	_ = Register(JSON)
	_ = Register(CSV)
}

// Register adds a new export type to the registry
func Register(exportType *ExportType) error {
	if !isValidTypeName(exportType.Name) {
		return fmt.Errorf("invalid export type name %q: must be lowercase alphanumeric with dashes and underscores only", exportType.Name)
	}

	// Normalize extension
	if !strings.HasPrefix(exportType.Extension, ".") {
		exportType.Extension = "." + exportType.Extension
	}

	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[exportType.Name]; exists {
		return fmt.Errorf("export type %q already registered", exportType.Name)
	}

	registry[exportType.Name] = exportType
	return nil
}

// Get returns an export type by name
func Get(name string) (*ExportType, error) {
	mu.RLock()
	defer mu.RUnlock()

	exportType, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("unknown export type %q", name)
	}
	return exportType, nil
}

// List returns all registered export type names, sorted
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isValidTypeName checks if an export type name is valid
func isValidTypeName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
