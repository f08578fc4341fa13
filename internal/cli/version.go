package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type versionOutput struct {
	Version string `json:"version"`
	Go      string `json:"go"`
	Server  string `json:"server"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			v := versionOutput{Version: Version, Go: runtime.Version(), Server: cfg.serverURL()}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, v)
			}
			fmt.Fprintf(out, "bde %s (%s)\nserver: %s\n", v.Version, v.Go, v.Server)
			return nil
		},
	}
}
