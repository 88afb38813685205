// Package payload turns documents into the name → content map an export
// request carries. Documents are any JSON-shaped values: a single object
// or an array of objects.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoData is returned when there is nothing to export
var ErrNoData = errors.New("no data to export")

// MetadataKeys are the Cosmos DB system properties removed by StripMetadata
var MetadataKeys = []string{"_rid", "_self", "_etag", "_attachments", "_ts"}

// DefaultIDProperty names the document property used for per-document file names
const DefaultIDProperty = "id"

// Options configures how documents become entries
type Options struct {
	// Individually writes one entry per array element instead of one entry
	// holding the whole array
	Individually bool

	// IDProperty is read from each document to name its entry. Defaults to "id".
	IDProperty string

	// StripMetadata removes MetadataKeys from every document
	StripMetadata bool

	// Now stamps generated names. Defaults to time.Now.
	Now func() time.Time
}

// Build converts docs into export entries.
//
// Naming rules:
//   - a single object, or an array when Individually is false, becomes one
//     entry named "<unix-ms>.json"
//   - with Individually, each element is named "<id>.json" when its
//     IDProperty is a non-empty string, otherwise "<unix-ms>-<n>.json"
//     where n counts from 1
//   - a name already taken is prefixed with "export-<unix-ms>-"
//
// docs is not modified.
func Build(docs any, opts Options) (map[string]string, error) {
	if docs == nil {
		return nil, ErrNoData
	}
	if opts.IDProperty == "" {
		opts.IDProperty = DefaultIDProperty
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	stamp := opts.Now().UnixMilli()
	entries := make(map[string]string)

	list, isList := docs.([]any)
	if !isList || !opts.Individually {
		value := docs
		if opts.StripMetadata {
			value = stripValue(docs)
		}
		content, err := marshal(value)
		if err != nil {
			return nil, err
		}
		entries[fmt.Sprintf("%d.json", stamp)] = content
		return entries, nil
	}

	for i, doc := range list {
		if opts.StripMetadata {
			doc = stripValue(doc)
		}
		content, err := marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}

		name := ""
		if obj, ok := doc.(map[string]any); ok {
			if id, ok := obj[opts.IDProperty].(string); ok && id != "" {
				name = id + ".json"
			}
		}
		if name == "" {
			name = fmt.Sprintf("%d-%d.json", stamp, i+1)
		}
		for {
			if _, taken := entries[name]; !taken {
				break
			}
			name = fmt.Sprintf("export-%d-%s", stamp, name)
		}
		entries[name] = content
	}

	return entries, nil
}

// stripValue returns a copy of v without metadata keys. Objects are
// stripped at the top level; arrays are stripped element by element.
func stripValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		stripped := make(map[string]any, len(value))
		for key, field := range value {
			if !isMetadataKey(key) {
				stripped[key] = field
			}
		}
		return stripped
	case []any:
		stripped := make([]any, len(value))
		for i, element := range value {
			if obj, ok := element.(map[string]any); ok {
				stripped[i] = stripValue(obj)
			} else {
				stripped[i] = element
			}
		}
		return stripped
	default:
		return v
	}
}

func isMetadataKey(key string) bool {
	for _, meta := range MetadataKeys {
		if key == meta {
			return true
		}
	}
	return false
}

// marshal renders v as two-space indented JSON without HTML escaping
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
