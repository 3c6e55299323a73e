package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/posrecon-dev/posrecon/internal/config"
	"github.com/posrecon-dev/posrecon/internal/gitops"
	"github.com/posrecon-dev/posrecon/internal/rates"
)

func newInitCommand() *cobra.Command {
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a reconciliation workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, noGit)
		},
	}

	cmd.Flags().BoolVar(&noGit, "no-git", false, "skip git repository setup")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, noGit bool) error {
	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"export",
		"rates",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write banks.yaml with the shipped bank formats.
	cfg := config.Default()
	if err := config.Save(filepath.Join(dir, "banks.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the default rate table.
	svc, err := rates.Open(filepath.Join(dir, "rates", "rates.yaml"), cfg.Git.AuthorName)
	if err != nil {
		return fmt.Errorf("creating rate table: %w", err)
	}
	if err := svc.Save(); err != nil {
		return fmt.Errorf("writing rate table: %w", err)
	}

	gitignore := "export/\nrates/rates.backup.*.yaml\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !noGit {
		if err := gitops.Init(dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
		hash, err := gitops.CommitPaths(dir,
			[]string{"banks.yaml", filepath.Join("rates", "rates.yaml"), ".gitignore", filepath.Join("import", ".gitkeep")},
			"init: new reconciliation workspace",
			cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
		cmd.Printf("Initialized workspace in %s (commit %s)\n", dir, hash)
		return nil
	}

	cmd.Printf("Initialized workspace in %s\n", dir)
	return nil
}
