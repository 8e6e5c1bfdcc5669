package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jjplan/internal/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a dataset for schema problems and dangling references",
	Long: `Load a dataset and report every problem that would stop the server
from using it: missing fields, unknown belts or option kinds, duplicate ids,
transitions to undefined positions, and start, catalog or tip entries naming
positions that do not exist.

Without a file argument the --dataset flag or the configured dataset is
checked, falling back to the embedded game plan.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := activeDatasetPath(cmd)
	if len(args) == 1 {
		path = args[0]
	}

	out := cmd.OutOrStdout()
	plan, err := loader.Load(path)
	if err != nil {
		var verr *loader.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return fmt.Errorf("%s: %d problem(s) found", sourceName(path), len(verr.Problems))
		}
		return err
	}

	fmt.Fprintf(out, "%s: ok (version %s, %d positions, %d start positions, %d catalog edges, %d tips)\n",
		plan.Source, plan.Version, plan.Graph.Len(), len(plan.Starts), plan.Catalog.Len(), len(plan.Tips))
	fmt.Fprintf(out, "fingerprint %s\n", plan.Fingerprint)
	return nil
}

func sourceName(path string) string {
	if path == "" {
		return loader.EmbeddedSource
	}
	return path
}
