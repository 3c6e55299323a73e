// Package config loads banks.yaml, the declarative description of each
// bank's export format: file pattern, encoding, delimiter, column
// mapping variants and classification rule. The pipeline loads it once
// per run; it is read-only during processing.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Row error policies.
const (
	OnRowErrorSkip  = "skip"  // skip the row, record the reason
	OnRowErrorAbort = "abort" // fail the whole file
)

// Config represents the top-level banks.yaml configuration.
type Config struct {
	Defaults     Defaults              `yaml:"defaults"`
	Verification VerificationConfig    `yaml:"verification"`
	Git          GitConfig             `yaml:"git"`
	Banks        map[string]BankConfig `yaml:"banks"`
}

// Defaults apply to any bank that does not override them.
type Defaults struct {
	Encoding   string `yaml:"encoding"`
	Delimiter  string `yaml:"delimiter"`
	OnRowError string `yaml:"on_row_error"`
}

// VerificationConfig controls the rate-match comparison.
type VerificationConfig struct {
	// Epsilon is the absolute tolerance, in minor currency units, on
	// the difference between actual and expected commission.
	Epsilon float64 `yaml:"epsilon"`
}

// GitConfig controls optional git snapshots of rate-table mutations.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// BankConfig describes one bank's export format.
type BankConfig struct {
	DisplayName string `yaml:"display_name"`
	FilePattern string `yaml:"file_pattern"` // glob against the lowercased file name
	Encoding    string `yaml:"encoding,omitempty"`
	Delimiter   string `yaml:"delimiter,omitempty"`
	SkipRows    int    `yaml:"skip_rows,omitempty"` // rows above the header

	// DateFormats are tried in order; Go reference-time layouts.
	DateFormats []string `yaml:"date_formats,omitempty"`

	// RatePercent marks sources whose rate column is a percentage
	// (2.95 = 2.95%) rather than a fraction.
	RatePercent bool `yaml:"rate_percent,omitempty"`

	// AbsoluteAmounts folds negative gross/commission values to their
	// absolute value (QNB exports refunds as negated settlements).
	AbsoluteAmounts bool `yaml:"absolute_amounts,omitempty"`

	// SinglePaymentTypes lists transaction-type values meaning a
	// single immediate payment, for sources without an installment
	// column.
	SinglePaymentTypes []string `yaml:"single_payment_types,omitempty"`

	OnRowError string `yaml:"on_row_error,omitempty"`

	// Variants are ordered column-mapping fallbacks; the first whose
	// required source columns are all present in the header wins.
	Variants []Variant `yaml:"variants"`

	Classify ClassifyRule `yaml:"classify"`
}

// Variant is one column-mapping layout for a bank. Banks that changed
// their export format over time declare one variant per layout.
type Variant struct {
	Name string `yaml:"name"`
	// Required lists the source columns that must be present for this
	// variant to match. Empty means every mapped source column.
	Required []string `yaml:"required,omitempty"`
	// Columns maps source column names to canonical field names.
	Columns map[string]string `yaml:"columns"`
}

// RequiredColumns returns the source columns a header must contain for
// the variant to match.
func (v Variant) RequiredColumns() []string {
	if len(v.Required) > 0 {
		return v.Required
	}
	cols := make([]string, 0, len(v.Columns))
	for raw := range v.Columns {
		cols = append(cols, raw)
	}
	return cols
}

// Classification rule modes.
const (
	ClassifyFlag   = "flag"   // exact match of a source flag value
	ClassifyMarker = "marker" // case-insensitive substring search
)

// ClassifyRule derives the transaction category for one bank.
type ClassifyRule struct {
	Mode    string   `yaml:"mode,omitempty"`
	Field   string   `yaml:"field,omitempty"` // canonical field, default transaction_type
	Refunds []string `yaml:"refunds,omitempty"`
	Markers []string `yaml:"markers,omitempty"`
}

// Load reads a banks.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Defaults.Encoding == "" {
		c.Defaults.Encoding = "utf-8"
	}
	if c.Defaults.Delimiter == "" {
		c.Defaults.Delimiter = ","
	}
	if c.Defaults.OnRowError == "" {
		c.Defaults.OnRowError = OnRowErrorSkip
	}
	if c.Verification.Epsilon == 0 {
		c.Verification.Epsilon = 0.01
	}
}

// Resolve fills a bank config's empty fields from the defaults.
func (c *Config) Resolve(bank BankConfig) BankConfig {
	if bank.Encoding == "" {
		bank.Encoding = c.Defaults.Encoding
	}
	if bank.Delimiter == "" {
		bank.Delimiter = c.Defaults.Delimiter
	}
	if bank.OnRowError == "" {
		bank.OnRowError = c.Defaults.OnRowError
	}
	if len(bank.DateFormats) == 0 {
		bank.DateFormats = []string{"2006-01-02", "02.01.2006", "02/01/2006", "02-01-2006"}
	}
	return bank
}
