package adapter

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/posrecon-dev/posrecon/internal/config"
	"github.com/posrecon-dev/posrecon/internal/schema"
)

// ErrUnknownSource reports a file no configured bank claims.
var ErrUnknownSource = errors.New("unknown source bank")

// Detect matches a file name against the configured bank file
// patterns. Both sides are folded first, so "Vakıf_Temmuz.xlsx"
// matches the pattern "*vakif*". Bank keys are checked in sorted
// order to keep detection deterministic.
func Detect(fileName string, cfg *config.Config) (string, error) {
	name := schema.Fold(filepath.Base(fileName))

	for _, key := range sortedBankKeys(cfg) {
		pattern := foldPattern(cfg.Banks[key].FilePattern)
		if pattern == "" {
			continue
		}
		ok, err := path.Match(pattern, name)
		if err != nil {
			return "", fmt.Errorf("bank %s: bad file pattern %q: %w", key, cfg.Banks[key].FilePattern, err)
		}
		if ok {
			return key, nil
		}
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(fileName), ErrUnknownSource)
}

// DetectFile identifies a file's bank by name first, then by its
// header row: renamed exports ("temmuz_raporu.csv") still resolve as
// long as their columns give the bank away.
func DetectFile(path string, cfg *config.Config) (string, error) {
	key, err := Detect(path, cfg)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrUnknownSource) {
		return "", err
	}

	header, delim, sniffErr := sniffHeader(path)
	if sniffErr != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnknownSource)
	}

	// The folded headers of several banks overlap, but their CSV
	// delimiters do not, so banks writing the sniffed delimiter get
	// first claim.
	if delim != "" {
		var matching []string
		for _, key := range sortedBankKeys(cfg) {
			if cfg.Resolve(cfg.Banks[key]).Delimiter == delim {
				matching = append(matching, key)
			}
		}
		if key, err := detectByHeader(header, cfg, matching); err == nil {
			return key, nil
		}
	}

	key, err = DetectByHeader(header, cfg)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return key, nil
}

func sortedBankKeys(cfg *config.Config) []string {
	keys := make([]string, 0, len(cfg.Banks))
	for key := range cfg.Banks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// sniffHeader reads a file's first non-blank row without knowing its
// bank config, guessing the CSV delimiter from the raw line. The
// delimiter is empty for workbooks.
func sniffHeader(path string) ([]string, string, error) {
	if isExcel(path) {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, "", err
		}
		for _, row := range rows {
			if !blankRecord(row) {
				return row, "", nil
			}
		}
		return nil, "", fmt.Errorf("%s: no header row", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		delim := guessDelimiter(line)
		return strings.Split(line, delim), delim, nil
	}
	return nil, "", fmt.Errorf("%s: no header row", path)
}

func guessDelimiter(line string) string {
	best, count := ",", strings.Count(line, ",")
	for _, d := range []string{";", "\t"} {
		if n := strings.Count(line, d); n > count {
			best, count = d, n
		}
	}
	return best
}

// foldPattern folds the literal parts of a glob pattern while keeping
// the wildcards intact, so the pattern matches against folded names.
func foldPattern(pattern string) string {
	var out, part strings.Builder
	flush := func() {
		out.WriteString(schema.Fold(part.String()))
		part.Reset()
	}
	for _, r := range pattern {
		if r == '*' || r == '?' {
			flush()
			out.WriteRune(r)
			continue
		}
		part.WriteRune(r)
	}
	flush()
	return out.String()
}

// DetectByHeader identifies the bank from the file's header row when
// the file name gives nothing away. Each bank's variants are scored
// by how many of their mapped source columns appear in the header;
// the highest-scoring bank wins, provided it clears a minimum overlap
// so a couple of generic column names ("Tarih", "Tutar") are not
// enough to claim a file. The Turkish exports share many folded
// column names, so ties break toward the variant whose columns are
// most completely present.
func DetectByHeader(header []string, cfg *config.Config) (string, error) {
	return detectByHeader(header, cfg, sortedBankKeys(cfg))
}

func detectByHeader(header []string, cfg *config.Config, keys []string) (string, error) {
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[schema.Fold(col)] = true
	}

	best := ""
	bestScore, bestRatio := 0, 0.0
	for _, key := range keys {
		for _, variant := range cfg.Banks[key].Variants {
			score, total := 0, 0
			for raw := range variant.Columns {
				total++
				if seen[schema.Fold(raw)] {
					score++
				}
			}
			if total == 0 || score < minOverlap(total) {
				continue
			}
			ratio := float64(score) / float64(total)
			if score > bestScore || (score == bestScore && ratio > bestRatio) {
				best, bestScore, bestRatio = key, score, ratio
			}
		}
	}
	if best == "" {
		return "", ErrUnknownSource
	}
	return best, nil
}

// minOverlap is the least number of matching columns a variant needs
// before it may claim a header: at least 2, at most 5, roughly a
// fifth of the variant's mapped columns in between.
func minOverlap(total int) int {
	n := (total + 4) / 5
	if n < 2 {
		n = 2
	}
	if n > 5 {
		n = 5
	}
	return n
}
