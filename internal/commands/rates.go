package commands

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/posrecon-dev/posrecon/internal/gitops"
	"github.com/posrecon-dev/posrecon/internal/ratelog"
	"github.com/posrecon-dev/posrecon/internal/rates"
)

func newRatesCommand() *cobra.Command {
	var configPath, ratesPath string

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect and maintain the commission rate table",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "banks.yaml", "bank format configuration")
	cmd.PersistentFlags().StringVar(&ratesPath, "rates", filepath.Join("rates", "rates.yaml"), "rate table file")

	cmd.AddCommand(newRatesShowCommand(&ratesPath))
	cmd.AddCommand(newRatesSetCommand(&configPath, &ratesPath))
	cmd.AddCommand(newRatesImportCommand(&configPath, &ratesPath))
	cmd.AddCommand(newRatesExportCommand(&ratesPath))
	cmd.AddCommand(newRatesHistoryCommand(&ratesPath))
	cmd.AddCommand(newRatesCompareCommand(&ratesPath))

	return cmd
}

func newRatesShowCommand(ratesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [bank]",
		Short: "Print the current rate table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rates.Open(*ratesPath, actor())
			if err != nil {
				return err
			}

			all := svc.Table().All()
			if len(args) == 1 {
				filtered := all[:0]
				for _, r := range all {
					if r.Bank == args[0] {
						filtered = append(filtered, r)
					}
				}
				all = filtered
				if len(all) == 0 {
					return fmt.Errorf("no rates for bank %q", args[0])
				}
			}

			cmd.Printf("%-12s %-13s %s\n", "BANK", "INSTALLMENTS", "RATE")
			for _, r := range all {
				cmd.Printf("%-12s %-13d %s\n", r.Bank, r.Installments, r.Rate.String())
			}
			return nil
		},
	}
}

func newRatesSetCommand(configPath, ratesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <bank> <installments> <rate>",
		Short: "Set one commission rate",
		Long: "Set the agreed fractional rate for a bank and installment count.\n" +
			"The previous table is backed up and the change is written to the audit log.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			installments, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("installments must be a number: %w", err)
			}
			rate, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("parsing rate: %w", err)
			}

			svc, err := rates.Open(*ratesPath, actor())
			if err != nil {
				return err
			}
			if err := svc.Update(args[0], installments, rate); err != nil {
				return err
			}
			cmd.Printf("Set %s/%d to %s (table v%d)\n", args[0], installments, rate, svc.Table().Version())

			return maybeCommit(cmd, *configPath, *ratesPath,
				fmt.Sprintf("rates: set %s/%d to %s", args[0], installments, rate))
		},
	}
}

func newRatesImportCommand(configPath, ratesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file-or-url>",
		Short: "Replace the rate table from a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rates.Open(*ratesPath, actor())
			if err != nil {
				return err
			}

			var n int
			if isURL(args[0]) {
				n, err = svc.ImportURL(args[0])
			} else {
				f, openErr := os.Open(args[0])
				if openErr != nil {
					return fmt.Errorf("opening rate table: %w", openErr)
				}
				defer f.Close()
				n, err = svc.Import(f)
			}
			if err != nil {
				return err
			}
			cmd.Printf("Imported %d rates from %s\n", n, args[0])

			return maybeCommit(cmd, *configPath, *ratesPath, "rates: import from "+args[0])
		},
	}
}

func newRatesExportCommand(ratesPath *string) *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the rate table to stdout or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rates.Open(*ratesPath, actor())
			if err != nil {
				return err
			}

			if outPath == "" {
				return svc.Export(cmd.OutOrStdout(), format)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			return svc.Export(f, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", rates.FormatYAML, "yaml or csv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	return cmd
}

func newRatesHistoryCommand(ratesPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent rate changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rates.Open(*ratesPath, actor())
			if err != nil {
				return err
			}
			entries, err := svc.History(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("No rate changes recorded.")
				return nil
			}

			for _, e := range entries {
				if e.Action == ratelog.ActionImport {
					cmd.Printf("%s  %-8s %-10s (full table)\n",
						e.Timestamp.Format(time.RFC3339), e.Action, e.Actor)
					continue
				}
				cmd.Printf("%s  %-8s %-10s %s/%d: %s -> %s\n",
					e.Timestamp.Format(time.RFC3339), e.Action, e.Actor,
					e.Bank, e.Installments, e.OldRate, e.NewRate)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "entries to show (0 for all)")

	return cmd
}

func newRatesCompareCommand(ratesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <file-or-url>",
		Short: "Diff the local rate table against another one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rates.Open(*ratesPath, actor())
			if err != nil {
				return err
			}
			remote, err := openTable(args[0])
			if err != nil {
				return err
			}

			diffs := svc.Compare(remote)
			if len(diffs) == 0 {
				cmd.Println("Tables are identical.")
				return nil
			}
			for _, d := range diffs {
				switch d.Kind {
				case rates.DiffChanged:
					cmd.Printf("%s/%d: local %s, remote %s\n", d.Bank, d.Installments, d.Local, d.Remote)
				case rates.DiffMissingRemote:
					cmd.Printf("%s/%d: local %s, missing remotely\n", d.Bank, d.Installments, d.Local)
				case rates.DiffMissingLocal:
					cmd.Printf("%s/%d: missing locally, remote %s\n", d.Bank, d.Installments, d.Remote)
				}
			}
			return nil
		},
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// openTable reads a YAML rate table from a local file or an HTTP URL.
func openTable(src string) (*rates.Table, error) {
	if isURL(src) {
		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Get(src)
		if err != nil {
			return nil, fmt.Errorf("fetching rate table: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching rate table: %s returned %s", src, resp.Status)
		}
		return rates.Decode(resp.Body)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening rate table: %w", err)
	}
	defer f.Close()
	return rates.Decode(f)
}

// maybeCommit snapshots the rates directory into git when the config
// enables auto-commit and the workspace is a repository.
func maybeCommit(cmd *cobra.Command, configPath, ratesPath, message string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.Git.AutoCommit {
		return nil
	}

	ratesDir := filepath.Dir(ratesPath)
	workDir := filepath.Dir(ratesDir)
	if !gitops.IsRepo(workDir) {
		return nil
	}

	rel, err := filepath.Rel(workDir, ratesDir)
	if err != nil {
		return fmt.Errorf("resolving rates dir: %w", err)
	}
	hash, err := gitops.CommitPaths(workDir, []string{rel}, message, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("committing rate change: %w", err)
	}
	cmd.Printf("Committed %s\n", hash)
	return nil
}
