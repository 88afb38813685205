package main

import (
	"errors"

	"github.com/arthur-debert/nanoexport/nanoexport"
	"github.com/arthur-debert/nanoexport/nanoexport/payload"
	"github.com/spf13/cobra"
)

func (cli *CLI) newDocumentsCommand() *cobra.Command {
	var (
		inFile        string
		path          string
		individually  bool
		idProperty    string
		stripMetadata bool
		isZip         bool
		zipName       string
	)

	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Export JSON documents, optionally one file per document",
		Long: `Read documents (a single object or an array) from a .json, .yaml or .yml
file and export them as JSON.

Without --individually everything goes into one file named after the
current time in milliseconds. With --individually each array element gets
its own file named by --id-property, falling back to <millis>-<n>.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := payload.LoadDocuments(inFile)
			if err != nil {
				return NewInputError("export documents", err)
			}

			data, err := payload.Build(docs, payload.Options{
				Individually:  individually,
				IDProperty:    idProperty,
				StripMetadata: stripMetadata,
			})
			if err != nil {
				if errors.Is(err, payload.ErrNoData) {
					return &CLIError{Operation: "export documents", Cause: "no documents found", Underlying: err}
				}
				return NewInputError("export documents", err)
			}

			req := &nanoexport.Request{
				ExportType: "json",
				Path:       path,
				IsZip:      &isZip,
				Data:       data,
			}
			if cmd.Flags().Changed("zip-name") {
				req.ZipName = &zipName
			}

			cli.logger.Debug("documents request", "source", inFile, "path", path, "entries", len(data))
			return cli.runExport(cmd.Context(), "export documents", req)
		},
	}

	cmd.Flags().StringVarP(&inFile, "in", "i", "", "documents file (.json, .yaml, .yml)")
	cmd.Flags().StringVarP(&path, "path", "p", "", "destination directory (must exist)")
	cmd.Flags().BoolVar(&individually, "individually", false, "write one entry per document")
	cmd.Flags().StringVar(&idProperty, "id-property", payload.DefaultIDProperty, "document property used as file name")
	cmd.Flags().BoolVar(&stripMetadata, "strip-metadata", false, "remove Cosmos DB system properties (_rid, _self, _etag, _attachments, _ts)")
	cmd.Flags().BoolVarP(&isZip, "zip", "z", false, "bundle entries into one zip archive")
	cmd.Flags().StringVar(&zipName, "zip-name", "", "archive name (default \"export\")")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
