package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"coverbuild/internal/tui"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live per-switch progress view",
		RunE:  runWatch,
	}
	return cmd
}

func runWatch(_ *cobra.Command, _ []string) error {
	wp, _, err := resolveWorkspace()
	if err != nil {
		return err
	}

	columns := []tui.Column{
		{Header: "SWITCH", Width: 28},
		{Header: "TIMESTAMP", Width: 12},
		{Header: "OK", Width: 6},
		{Header: "FAIL", Width: 6},
		{Header: "ABORTED", Width: 8},
		{Header: "REMAINING", Width: 10},
		{Header: "STATUS", Width: 10},
	}

	refresh := func() ([]tui.Row, error) {
		summaries, err := summarize(wp)
		if err != nil {
			return nil, err
		}
		rows := make([]tui.Row, len(summaries))
		for i, s := range summaries {
			rows[i] = tui.Row{Fields: []string{
				s.ID,
				shortTimestamp(s.Timestamp),
				strconv.Itoa(s.Succeeded),
				strconv.Itoa(s.Failed),
				strconv.Itoa(s.Aborted),
				strconv.Itoa(s.Remaining),
				s.State,
			}}
		}
		return rows, nil
	}

	model := tui.NewWatchModel("coverbuild — "+wp.Root, columns, refresh)
	return tui.Watch(model)
}
