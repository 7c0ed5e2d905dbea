package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

func reportsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "reports", Short: "Inspect persisted reports"}
	cmd.AddCommand(reportsListCmd())
	return cmd
}

func reportsListCmd() *cobra.Command {
	var (
		f      entity.ReportFilter
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()

			reports, err := c.service.ListReports(cmd.Context(), f)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), reports)
			}
			renderReports(cmd.OutOrStdout(), reports)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Repo, "repo", "", "repo filter")
	cmd.Flags().StringVar(&f.Team, "team", "", "team filter")
	cmd.Flags().IntVar(&f.Limit, "limit", 20, "max reports (1-100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func renderReports(out io.Writer, reports []entity.WorkflowReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"ID", "Repo", "Team", "Window", "Score", "Version", "Partial", "Created"})
	for _, r := range reports {
		tw.AppendRow(table.Row{r.ID, r.Repo, r.Team, r.WindowDays, r.Score, r.Version, r.Partial, r.CreatedAt.Format("2006-01-02 15:04")})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(reports)})
	tw.Render()
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBottlenecks(out io.Writer, bottlenecks []string) {
	if len(bottlenecks) == 0 {
		fmt.Fprintln(out, "no bottlenecks detected")
		return
	}
	fmt.Fprintln(out, strings.Join(prefixAll(bottlenecks, "- "), "\n"))
}

func prefixAll(in []string, prefix string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = prefix + s
	}
	return out
}
