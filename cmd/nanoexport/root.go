package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/arthur-debert/nanoexport/internal/pathlock"
	"github.com/arthur-debert/nanoexport/nanoexport"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CLI wires the cobra command tree to a viper configuration
type CLI struct {
	rootCmd  *cobra.Command
	v        *viper.Viper
	stdout   io.Writer
	stderr   io.Writer
	settings settings
	logger   *slog.Logger
	closeLog func() error
}

// NewCLI creates the command tree writing to the given streams
func NewCLI(stdout, stderr io.Writer) *CLI {
	cli := &CLI{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
	}

	cli.setupViperConfig()
	cli.createRootCommand()
	cli.rootCmd.AddCommand(cli.newSaveCommand())
	cli.rootCmd.AddCommand(cli.newDocumentsCommand())
	cli.rootCmd.AddCommand(cli.newTypesCommand())

	return cli
}

// Execute runs the CLI with the given arguments
func (cli *CLI) Execute(args []string) error {
	cli.rootCmd.SetArgs(args)
	err := cli.rootCmd.ExecuteContext(context.Background())
	if cli.closeLog != nil {
		if closeErr := cli.closeLog(); closeErr != nil && err == nil {
			err = closeErr
		}
		cli.closeLog = nil
	}
	if err != nil {
		fmt.Fprintf(cli.stderr, "Error: %v\n", err)
	}
	return err
}

// setupViperConfig configures environment variables and defaults
func (cli *CLI) setupViperConfig() {
	cli.v.SetEnvPrefix("NANOEXPORT")
	// Replace dash with underscore in env vars (e.g., --name-policy -> NANOEXPORT_NAME_POLICY)
	cli.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cli.v.AutomaticEnv()
	setDefaults(cli.v)
}

// readConfigFile loads the config file named by --config or NANOEXPORT_CONFIG,
// falling back to nanoexport.yaml in the usual locations
func (cli *CLI) readConfigFile(explicit string) error {
	if explicit == "" {
		explicit = os.Getenv("NANOEXPORT_CONFIG")
	}

	if explicit != "" {
		cli.v.SetConfigFile(explicit)
		if err := cli.v.ReadInConfig(); err != nil {
			return NewConfigError("load configuration", err.Error(), CommonSuggestions.CheckConfig)
		}
		return nil
	}

	cli.v.SetConfigName("nanoexport")
	cli.v.SetConfigType("yaml")
	cli.v.AddConfigPath(".")
	cli.v.AddConfigPath("$HOME/.nanoexport")
	cli.v.AddConfigPath("/etc/nanoexport")

	if err := cli.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return NewConfigError("load configuration", err.Error(), CommonSuggestions.CheckConfig)
	}
	return nil
}

func (cli *CLI) createRootCommand() {
	var configFile string

	cli.rootCmd = &cobra.Command{
		Use:   "nanoexport",
		Short: "Export named text payloads as files or a zip archive",
		Long: `nanoexport writes named text payloads into an existing directory,
either one file per entry or bundled into a single zip archive.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (NANOEXPORT_*)
3. Configuration file (--config, NANOEXPORT_CONFIG, ./nanoexport.yaml,
   ~/.nanoexport/nanoexport.yaml, /etc/nanoexport/nanoexport.yaml)

Examples:
  # Export a request file
  nanoexport save --request request.yaml

  # Export entries from a map file into a zip archive
  nanoexport save --path ./out --data entries.json --zip --zip-name bundle

  # Export one file per document, named by id
  nanoexport documents --in documents.json --path ./out --individually`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.readConfigFile(configFile); err != nil {
				return err
			}
			if err := bindFlags(cli.v, cmd.Flags()); err != nil {
				return err
			}

			cli.settings = loadSettings(cli.v)
			if err := cli.settings.validate(); err != nil {
				return err
			}

			logger, closeLog, err := initLogging(cli.settings.LogLevel, cli.settings.LogFile, cli.settings.Verbose, cli.stderr)
			if err != nil {
				return NewConfigError("initialize logging", err.Error(), CommonSuggestions.CheckPerms)
			}
			cli.logger = logger
			cli.closeLog = closeLog
			return nil
		},
	}

	flags := cli.rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to config file")
	flags.String(keyLogLevel, "warn", "log level: debug|info|warn|error")
	flags.String(keyLogFile, "", "log file (default: XDG cache dir)")
	flags.BoolP(keyVerbose, "v", false, "also log to stderr")
	flags.String(keyCompression, "zstd", "archive member compression: zstd|deflate|store")
	flags.String(keyNamePolicy, "reject", "entry name policy: reject|allow")
	flags.Bool(keyAtomic, false, "stage output under temporary names and rename into place on success")
	flags.String(keyFileMode, "0644", "permission of exported plain files (octal)")
	flags.Bool(keyLock, false, "serialize exports to the same destination directory")
	flags.Duration(keyLockTimeout, 0, "how long to wait for the destination lock (default 30s)")
	flags.String(keyLockDir, "", "directory for lock files (default: XDG cache dir)")
	flags.StringP(keyFormat, "f", "text", "output format: text|json")
}

// bindFlags binds only the flags set on the command line, so that
// environment and config values are not shadowed by flag defaults
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.Visit(func(flag *pflag.Flag) {
		if bindErr == nil && flag.Name != "config" {
			bindErr = v.BindPFlag(flag.Name, flag)
		}
	})
	return bindErr
}

// runExport executes one request, optionally under the destination lock,
// and renders the response
func (cli *CLI) runExport(ctx context.Context, operation string, req *nanoexport.Request) error {
	opts, err := cli.settings.exportOptions(cli.logger)
	if err != nil {
		return err
	}

	if cli.settings.Lock {
		lockCtx, cancel := context.WithTimeout(ctx, cli.settings.LockTimeout)
		defer cancel()

		release, err := pathlock.New(cli.settings.LockDir).Acquire(lockCtx, req.Path)
		if err != nil {
			return &CLIError{
				Operation:   operation,
				Cause:       "could not lock destination",
				Details:     err.Error(),
				Suggestions: []string{"Another export to the same directory may still be running", "Increase --lock-timeout"},
				Underlying:  err,
			}
		}
		defer func() {
			if err := release(); err != nil {
				cli.logger.Warn("failed to release destination lock", "path", req.Path, "error", err)
			}
		}()
	}

	resp := <-nanoexport.SaveAsync(req, opts)
	if err := cli.render(resp); err != nil {
		return err
	}
	if !resp.OK {
		return NewExportError(operation, resp)
	}
	return nil
}

// render writes the response in the configured format
func (cli *CLI) render(resp nanoexport.Response) error {
	if cli.settings.Format == "json" {
		encoder := json.NewEncoder(cli.stdout)
		return encoder.Encode(resp)
	}
	_, err := fmt.Fprintln(cli.stdout, resp.String())
	return err
}
