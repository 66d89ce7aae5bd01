package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"coverbuild/internal/config"
	"coverbuild/internal/layout"
	"coverbuild/internal/workspace"
)

const defaultConfigYAML = `# coverbuild workspace configuration.
version: 1

# Compiler packages to keep a build switch for, as name.version.
# switches:
#   - ocaml-base-compiler.5.1.1
#   - ocaml-base-compiler.4.14.2

git:
  binary: git
  committer_name: coverbuild
  committer_email: coverbuild@localhost
`

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a coverbuild workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
	return cmd
}

func resolveInitDir(workdirFlag string, args []string) (string, error) {
	if workdirFlag != "" {
		return workdirFlag, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	if len(args) > 0 {
		if args[0] == "." {
			return cwd, nil
		}
		if filepath.IsAbs(args[0]) {
			return args[0], nil
		}
		return filepath.Join(cwd, args[0]), nil
	}
	return cwd, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveInitDir(workDir, args)
	if err != nil {
		return err
	}

	wp, err := layout.Resolve(dir)
	if err != nil {
		return err
	}
	if err := wp.EnsureRoot(); err != nil {
		return err
	}

	exists, err := layout.FileExists(wp.ConfigFile)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	if !exists {
		if err := os.WriteFile(wp.ConfigFile, []byte(defaultConfigYAML), 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	}

	cfg, err := config.Load(wp.ConfigFile)
	if err != nil {
		return err
	}

	g := gitBackend(cfg)
	ctx := cmd.Context()

	// One load per configured switch creates its skeleton and an empty
	// snapshot repository, and leaves existing switches untouched.
	for _, id := range cfg.Switches {
		if _, err := workspace.LoadOrCreate(ctx, g, wp, workspace.SingleSwitch{ID: id}); err != nil {
			return err
		}
	}
	if _, err := workspace.LoadOrCreate(ctx, g, wp, workspace.AllSwitches{}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace at %s\n", wp.Root)
	return nil
}
