package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/shrihari-lab/chipatlas/pkg/buildinfo"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show chipatlas version information",
		RunE:  runVersion,
	}
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if jsonOutput {
		versionInfo := map[string]interface{}{
			"version":   buildinfo.BinaryVersion,
			"author":    buildinfo.Author,
			"goVersion": runtime.Version(),
			"platform":  runtime.GOOS,
			"arch":      runtime.GOARCH,
		}
		jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		fmt.Fprintln(out, string(jsonData))
		return nil
	}

	fmt.Fprintf(out, "chipatlas %s by %s (%s, %s/%s)\n",
		buildinfo.BinaryVersion, buildinfo.Author, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
