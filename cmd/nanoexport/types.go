package main

import (
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/nanoexport/formats"
	"github.com/spf13/cobra"
)

func (cli *CLI) newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported export types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type typeInfo struct {
				Name      string `json:"name"`
				Extension string `json:"extension"`
				Writes    bool   `json:"writes"`
			}

			var infos []typeInfo
			for _, name := range formats.List() {
				exportType, err := formats.Get(name)
				if err != nil {
					return err
				}
				infos = append(infos, typeInfo{Name: exportType.Name, Extension: exportType.Extension, Writes: exportType.Writes})
			}

			if cli.settings.Format == "json" {
				return json.NewEncoder(cli.stdout).Encode(infos)
			}
			for _, info := range infos {
				note := ""
				if !info.Writes {
					note = " (accepted, writes nothing)"
				}
				fmt.Fprintf(cli.stdout, "%s\t%s%s\n", info.Name, info.Extension, note)
			}
			return nil
		},
	}
}
