package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/posrecon-dev/posrecon/internal/config"
	"github.com/posrecon-dev/posrecon/internal/export"
	"github.com/posrecon-dev/posrecon/internal/pipeline"
	"github.com/posrecon-dev/posrecon/internal/rates"
)

func newRunCommand() *cobra.Command {
	var (
		configPath string
		ratesPath  string
		inputDir   string
		outputDir  string
		epsilon    float64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the export files in the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if epsilon > 0 {
				cfg.Verification.Epsilon = epsilon
			}

			svc, err := rates.Open(ratesPath, actor())
			if err != nil {
				return err
			}

			logger := log.New(cmd.ErrOrStderr())
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}

			res, err := pipeline.New(cfg, svc.Table(), logger).Run(inputDir)
			if err != nil {
				return err
			}

			if err := writeResults(outputDir, res); err != nil {
				return err
			}
			printRunReport(cmd, res, outputDir)

			if failed := failedFiles(res); failed == len(res.Files) {
				return fmt.Errorf("all %d files failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "banks.yaml", "bank format configuration")
	cmd.Flags().StringVar(&ratesPath, "rates", filepath.Join("rates", "rates.yaml"), "rate table file")
	cmd.Flags().StringVarP(&inputDir, "input", "i", "import", "directory with bank export files")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "export", "directory for result files")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "commission tolerance in currency units (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	return cmd
}

// loadConfig falls back to the shipped bank formats when no config
// file exists, so a bare workspace still reconciles.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// actor is the name recorded in the rate audit log for CLI sessions.
func actor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "posrecon"
}

func failedFiles(res *pipeline.RunResult) int {
	n := 0
	for _, rep := range res.Files {
		if rep.Err != nil {
			n++
		}
	}
	return n
}

func writeResults(dir string, res *pipeline.RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	stamp := export.FileTimestamp(time.Now())

	write := func(name string, fn func(f *os.File) error) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		defer f.Close()
		return fn(f)
	}

	if err := write("transactions_"+stamp+".csv", func(f *os.File) error {
		return export.WriteTransactions(f, res.Transactions)
	}); err != nil {
		return err
	}
	if err := write("summary_bank_"+stamp+".csv", func(f *os.File) error {
		return export.WriteSummaries(f, res.ByBank)
	}); err != nil {
		return err
	}
	if err := write("summary_period_"+stamp+".csv", func(f *os.File) error {
		return export.WriteSummaries(f, res.ByBankPeriod)
	}); err != nil {
		return err
	}
	return write("summary_installments_"+stamp+".csv", func(f *os.File) error {
		return export.WriteSummaries(f, res.ByBankInstallments)
	})
}

func printRunReport(cmd *cobra.Command, res *pipeline.RunResult, outputDir string) {
	skipped := 0
	for _, rep := range res.Files {
		if rep.Err != nil {
			cmd.Printf("  %-30s FAILED: %v\n", rep.File, rep.Err)
			continue
		}
		skipped += len(rep.Skipped)
		cmd.Printf("  %-30s %s: %d transactions, %d skipped rows\n",
			rep.File, rep.Bank, rep.Transactions, len(rep.Skipped))
	}

	cmd.Printf("\nVerified %d transactions against rate table v%d: %d mismatched, %d skipped rows\n",
		len(res.Transactions), res.RateVersion, res.MismatchedCount(), skipped)
	cmd.Printf("Results written to %s\n", outputDir)
}
