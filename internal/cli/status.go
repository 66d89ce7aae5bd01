package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"coverbuild/internal/tui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-switch build progress",
		RunE:  runStatus,
	}
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	wp, _, err := resolveWorkspace()
	if err != nil {
		return err
	}

	summaries, err := summarize(wp)
	if err != nil {
		return err
	}

	if outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Workspace: %s\n\n", wp.Root)

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No switches. Add them to coverbuild.yaml and run init.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, tui.HeaderStyle.Render("SWITCH\tTIMESTAMP\tOK\tFAIL\tABORTED\tREMAINING\tSTATUS"))
	for _, s := range summaries {
		status := tui.StatusStyle(s.State).Render(s.State)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			s.ID, shortTimestamp(s.Timestamp), s.Succeeded, s.Failed, s.Aborted, s.Remaining, status)
	}
	return w.Flush()
}

func shortTimestamp(ts string) string {
	if len(ts) > 12 {
		return ts[:12]
	}
	if ts == "" {
		return "-"
	}
	return ts
}
