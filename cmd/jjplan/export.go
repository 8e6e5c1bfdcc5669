package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jjplan/internal/codec"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the active dataset in another format",
	Long: `Write the active dataset (embedded, --dataset, or configured) as YAML,
JSON or TOML. The output loads back to the same game plan.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "Output format: yaml, json, toml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	c, err := codec.ForFormat(exportFormat)
	if err != nil {
		return err
	}

	plan, err := loadPlan(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := c.Export(plan.Dataset, w); err != nil {
		return fmt.Errorf("export %s: %w", c.Format(), err)
	}
	return nil
}
