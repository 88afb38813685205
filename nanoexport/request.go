package nanoexport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRequest reads a request from a .json, .yaml or .yml file
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	req, err := DecodeRequest(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request file %s: %w", path, err)
	}
	return req, nil
}

// DecodeRequest parses a request. format is a file extension or format
// name: "json", "yaml" or "yml", with or without the leading dot.
func DecodeRequest(data []byte, format string) (*Request, error) {
	var req Request

	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&req); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported request format %q", format)
	}

	return &req, nil
}
