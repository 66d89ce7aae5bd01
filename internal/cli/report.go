package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"coverbuild/internal/layout"
	"coverbuild/internal/outcome"
	"coverbuild/internal/tui"
	"coverbuild/internal/workspace"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <switch>",
		Short: "Dump a switch's per-package build report",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	wp, _, err := resolveWorkspace()
	if err != nil {
		return err
	}

	sp := wp.Switch(args[0])
	exists, err := layout.DirExists(sp.Dir)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("unknown switch %s", args[0])
	}

	rec, ok, err := workspace.ReadRecord(sp)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("switch %s has no build record yet", args[0])
	}

	if outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec.Report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Switch: %s  timestamp %s  (%d attempts)\n\n", sp.ID, rec.Timestamp, len(rec.Report))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, tui.HeaderStyle.Render("PACKAGE\tRESULT\tDETAIL"))
	for _, e := range rec.Report {
		result, detail := describeReport(e.Report)
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Package, tui.StatusStyle(result).Render(result), detail)
	}
	return w.Flush()
}

func describeReport(r outcome.Report) (string, string) {
	switch v := r.(type) {
	case outcome.Success:
		return "success", fmt.Sprintf("%d log lines", len(v.Log))
	case outcome.Failure:
		return "error", fmt.Sprintf("failed during %s, %d log lines", v.Cause, len(v.Log))
	case outcome.Aborted:
		ids := v.Deps.Sorted()
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = id.String()
		}
		return "aborted", "blocked by " + strings.Join(names, ", ")
	}
	return "?", ""
}
