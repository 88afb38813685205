package main

import (
	"github.com/arthur-debert/nanoexport/nanoexport"
	"github.com/arthur-debert/nanoexport/nanoexport/payload"
	"github.com/spf13/cobra"
)

func (cli *CLI) newSaveCommand() *cobra.Command {
	var (
		requestFile string
		exportType  string
		path        string
		isZip       bool
		zipName     string
		dataFile    string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Export entries from a request file or flags",
		Long: `Export entries to a destination directory.

With --request, the request file (.json, .yaml or .yml) carries every field:
export_type, export_path, is_zip, zip_name and data. Otherwise the request
is built from flags and --data names a file holding the entry map.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req *nanoexport.Request

			if requestFile != "" {
				loaded, err := nanoexport.LoadRequest(requestFile)
				if err != nil {
					return NewInputError("save", err, "Request files must be .json, .yaml or .yml")
				}
				req = loaded
			} else {
				if path == "" {
					return NewConfigError("save", "--path is required without --request", CommonSuggestions.RunHelp)
				}

				data := map[string]string{}
				if dataFile != "" {
					loaded, err := payload.LoadEntries(dataFile)
					if err != nil {
						return NewInputError("save", err, "Data files hold a map of entry name to text content")
					}
					data = loaded
				}

				req = &nanoexport.Request{
					ExportType: exportType,
					Path:       path,
					IsZip:      &isZip,
					Data:       data,
				}
				if cmd.Flags().Changed("zip-name") {
					req.ZipName = &zipName
				}
			}

			cli.logger.Debug("save request", "source", requestFile, "path", req.Path, "entries", len(req.Data))
			return cli.runExport(cmd.Context(), "save", req)
		},
	}

	cmd.Flags().StringVarP(&requestFile, "request", "r", "", "request file (.json, .yaml, .yml)")
	cmd.Flags().StringVarP(&exportType, "type", "t", "json", "export type")
	cmd.Flags().StringVarP(&path, "path", "p", "", "destination directory (must exist)")
	cmd.Flags().BoolVarP(&isZip, "zip", "z", false, "bundle entries into one zip archive")
	cmd.Flags().StringVar(&zipName, "zip-name", "", "archive name (default \"export\")")
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "entry map file (.json, .yaml, .yml)")
	cmd.MarkFlagsMutuallyExclusive("request", "path")

	return cmd
}
