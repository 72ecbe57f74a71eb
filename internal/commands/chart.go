package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flav-dev/flav/internal/db"
	"github.com/flav-dev/flav/internal/gitops"
	"github.com/flav-dev/flav/internal/groups"
)

const (
	groupsFile   = "groups.csv"
	accountsFile = "accounts.csv"
)

func newChartCommand(configPath *string) *cobra.Command {
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart namespace operations",
	}
	chartCmd.AddCommand(newChartExportCommand(configPath))
	chartCmd.AddCommand(newChartImportCommand(configPath))
	return chartCmd
}

func newChartExportCommand(configPath *string) *cobra.Command {
	var outDir string
	var commit bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the chart as groups.csv and accounts.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			snap := a.chart.Snapshot()
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", outDir, err)
			}
			if err := writeFile(filepath.Join(outDir, groupsFile), func(f *os.File) error {
				return groups.WriteGroups(f, snap.Groups)
			}); err != nil {
				return err
			}
			if err := writeFile(filepath.Join(outDir, accountsFile), func(f *os.File) error {
				return groups.WriteAccounts(f, snap.Accounts)
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d groups and %d accounts to %s\n", len(snap.Groups), len(snap.Accounts), outDir)
			if !commit {
				return nil
			}
			return commitExport(cmd.OutOrStdout(), outDir, a, len(snap.Groups), len(snap.Accounts))
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the CSVs to a git repository in the output directory")

	return cmd
}

func newChartImportCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <directory>",
		Short: "Replace the chart with groups.csv and accounts.csv from a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gf, err := os.Open(filepath.Join(args[0], groupsFile))
			if err != nil {
				return fmt.Errorf("opening groups CSV: %w", err)
			}
			defer gf.Close()
			af, err := os.Open(filepath.Join(args[0], accountsFile))
			if err != nil {
				return fmt.Errorf("opening accounts CSV: %w", err)
			}
			defer af.Close()

			snap, err := groups.ReadSnapshot(gf, af)
			if err != nil {
				return err
			}
			if err := groups.CheckSnapshot(snap); err != nil {
				return fmt.Errorf("checking chart: %w", err)
			}

			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.store == nil {
				return errors.New("chart import needs storage.path to be set")
			}
			if err := a.store.SaveChart(cmd.Context(), db.ChartNamespace, snap); err != nil {
				return err
			}
			if err := a.audit.Record("cli", db.ChartNamespace, "import_chart", "", fmt.Sprintf("groups=%d accounts=%d", len(snap.Groups), len(snap.Accounts))); err != nil {
				a.logger.Error("writing audit log", "error", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d groups and %d accounts\n", len(snap.Groups), len(snap.Accounts))
			return nil
		},
	}
}

// commitExport records an export in git, initializing the repository on
// first use.
func commitExport(out io.Writer, dir string, a *app, groupCount, accountCount int) error {
	if !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return err
		}
	}
	author := gitops.Author{Name: a.cfg.Git.AuthorName, Email: a.cfg.Git.AuthorEmail}
	msg := fmt.Sprintf("chart: export %d groups, %d accounts", groupCount, accountCount)
	hash, err := gitops.Commit(dir, msg, author, groupsFile, accountsFile)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		fmt.Fprintln(out, "Chart unchanged since last commit")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Committed %s\n", hash)
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
