package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/groundsched/app/plugins"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var versionOutput string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the available backends",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := struct {
			Version  string           `json:"version" yaml:"version"`
			Backends plugins.Backends `json:"backends" yaml:"backends"`
		}{Version, plugins.Available()}
		return render(cmd.OutOrStdout(), versionOutput, info, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "groundsched %s\nauthorities: %v\nmetrics sinks: %v\n",
				info.Version, info.Backends.Authorities, info.Backends.Metrics)
			return err
		})
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", outputText, "output format: text, json or yaml")
	rootCmd.AddCommand(versionCmd)
}
