package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/nanoexport/internal/validation"
	"github.com/arthur-debert/nanoexport/nanoexport/export"
	"github.com/spf13/viper"
)

// Configuration keys shared by flags, environment and config files
const (
	keyLogLevel    = "log-level"
	keyLogFile     = "log-file"
	keyVerbose     = "verbose"
	keyCompression = "compression"
	keyNamePolicy  = "name-policy"
	keyAtomic      = "atomic"
	keyFileMode    = "file-mode"
	keyLock        = "lock"
	keyLockTimeout = "lock-timeout"
	keyLockDir     = "lock-dir"
	keyFormat      = "format"
)

// settings is the resolved configuration for one command run
type settings struct {
	LogLevel    string
	LogFile     string
	Verbose     bool
	Compression string
	NamePolicy  string
	Atomic      bool
	FileMode    string
	Lock        bool
	LockTimeout time.Duration
	LockDir     string
	Format      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyCompression, string(export.Zstd))
	v.SetDefault(keyNamePolicy, string(validation.RejectUnsafe))
	v.SetDefault(keyFileMode, "0644")
	v.SetDefault(keyLockTimeout, 30*time.Second)
	v.SetDefault(keyFormat, "text")
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		LogLevel:    v.GetString(keyLogLevel),
		LogFile:     v.GetString(keyLogFile),
		Verbose:     v.GetBool(keyVerbose),
		Compression: v.GetString(keyCompression),
		NamePolicy:  v.GetString(keyNamePolicy),
		Atomic:      v.GetBool(keyAtomic),
		FileMode:    v.GetString(keyFileMode),
		Lock:        v.GetBool(keyLock),
		LockTimeout: v.GetDuration(keyLockTimeout),
		LockDir:     v.GetString(keyLockDir),
		Format:      strings.ToLower(v.GetString(keyFormat)),
	}
}

// exportOptions converts settings into engine options
func (s settings) exportOptions(logger *slog.Logger) (export.Options, error) {
	compression, err := export.ParseCompression(s.Compression)
	if err != nil {
		return export.Options{}, NewConfigError("configure export", err.Error(), CommonSuggestions.CheckConfig)
	}

	policy, err := validation.ParseNamePolicy(s.NamePolicy)
	if err != nil {
		return export.Options{}, NewConfigError("configure export", err.Error(), CommonSuggestions.CheckConfig)
	}

	mode, err := parseFileMode(s.FileMode)
	if err != nil {
		return export.Options{}, NewConfigError("configure export", err.Error(), "Use an octal permission such as 0644")
	}

	return export.Options{
		Logger:      logger,
		Compression: compression,
		NamePolicy:  policy,
		Atomic:      s.Atomic,
		FileMode:    mode,
	}, nil
}

func (s settings) validate() error {
	switch s.Format {
	case "text", "json":
	default:
		return NewConfigError("configure output", fmt.Sprintf("invalid format %q", s.Format), "Use --format text or --format json")
	}
	if s.Lock && s.LockTimeout <= 0 {
		return NewConfigError("configure locking", "lock-timeout must be positive", CommonSuggestions.CheckConfig)
	}
	return nil
}

// parseFileMode parses an octal permission string such as "0644"
func parseFileMode(s string) (fs.FileMode, error) {
	if s == "" {
		return export.DefaultFileMode, nil
	}
	value, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode %q: %w", s, err)
	}
	if value == 0 || value > 0777 {
		return 0, fmt.Errorf("invalid file mode %q: must be between 0001 and 0777", s)
	}
	return fs.FileMode(value), nil
}
