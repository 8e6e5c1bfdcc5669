package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"jjplan/internal/domain"
)

var (
	catalogBelt     string
	catalogPosition string
	catalogEdges    bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the belt-filtered submission catalog",
	Long: `Print the submissions visible at a belt, lowest belt first. With
--position only the submissions reachable from that position are listed;
with --edges every (position, submission) row is printed instead.

Examples:
  jjplan catalog --belt white
  jjplan catalog --belt blue --position mount-top`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVarP(&catalogBelt, "belt", "b", "all", "Highest belt to include: white, blue, purple, brown, black, all")
	catalogCmd.Flags().StringVarP(&catalogPosition, "position", "p", "", "Only submissions reachable from this position")
	catalogCmd.Flags().BoolVar(&catalogEdges, "edges", false, "Print every catalog edge with its belt and setup")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	filter, err := domain.ParseBeltFilter(catalogBelt)
	if err != nil {
		return err
	}

	plan, err := loadPlan(cmd)
	if err != nil {
		return err
	}
	if catalogPosition != "" && !plan.Graph.Has(catalogPosition) {
		return &domain.PositionNotFoundError{ID: catalogPosition}
	}

	out := cmd.OutOrStdout()
	if catalogEdges {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "POSITION\tSUBMISSION\tBELT\tSETUP")
		for _, e := range plan.Catalog.FilterByTier(filter) {
			if catalogPosition != "" && e.From != catalogPosition {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", plan.Graph.Label(e.From), e.Submission, e.Belt, e.Setup)
		}
		return tw.Flush()
	}

	var names []string
	if catalogPosition != "" {
		names = plan.Catalog.FilterByPosition(filter, catalogPosition)
	} else {
		names = plan.Catalog.SubmissionNames(filter)
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}
