package cli

import (
	"fmt"

	"coverbuild/internal/config"
	"coverbuild/internal/gitvc"
	"coverbuild/internal/layout"
	"coverbuild/internal/outcome"
	"coverbuild/internal/workspace"
)

// switchSummary condenses one switch's live record for status output.
type switchSummary struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp,omitempty"`
	State     string `json:"state"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Aborted   int    `json:"aborted"`
	Remaining int    `json:"remaining"`
	CoverDone int    `json:"cover_done"`
}

func resolveWorkspace() (layout.WorkspacePaths, config.Config, error) {
	wp, err := layout.Resolve(workDir)
	if err != nil {
		return layout.WorkspacePaths{}, config.Config{}, err
	}
	cfg, err := config.Load(wp.ConfigFile)
	if err != nil {
		return layout.WorkspacePaths{}, config.Config{}, err
	}
	return wp, cfg, nil
}

func gitBackend(cfg config.Config) *gitvc.Git {
	g := gitvc.New(cfg.Git.Binary, nil)
	g.CommitterName = cfg.Git.CommitterName
	g.CommitterEmail = cfg.Git.CommitterEmail
	return g
}

// summarize inspects every switch read-only: no snapshot is opened, so a
// builder holding a switch is left alone.
func summarize(wp layout.WorkspacePaths) ([]switchSummary, error) {
	discovered, err := workspace.Discover(wp)
	if err != nil {
		return nil, err
	}

	summaries := make([]switchSummary, 0, len(discovered))
	for _, sp := range discovered {
		s, err := summarizeSwitch(sp)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func summarizeSwitch(sp layout.SwitchPaths) (switchSummary, error) {
	s := switchSummary{ID: sp.ID, State: "empty"}

	rec, ok, err := workspace.ReadRecord(sp)
	if err != nil {
		return switchSummary{}, fmt.Errorf("switch %s: %w", sp.ID, err)
	}
	if !ok {
		return s, nil
	}

	s.Timestamp = rec.Timestamp
	s.CoverDone = len(rec.Cover)
	for _, e := range rec.Report {
		switch e.Report.(type) {
		case outcome.Success:
			s.Succeeded++
		case outcome.Failure:
			s.Failed++
		case outcome.Aborted:
			s.Aborted++
		}
	}

	switch st := rec.Status.(type) {
	case outcome.Remaining:
		s.State = "remaining"
		s.Remaining = st.Pkgs.Len()
	case outcome.FinishedWithUninstallable:
		s.State = "finished"
		s.Remaining = 0
	}
	return s, nil
}
