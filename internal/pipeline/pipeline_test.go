package pipeline

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posrecon-dev/posrecon/internal/adapter"
	"github.com/posrecon-dev/posrecon/internal/config"
	"github.com/posrecon-dev/posrecon/internal/export"
	"github.com/posrecon-dev/posrecon/internal/rates"
	"github.com/posrecon-dev/posrecon/internal/schema"
)

const ziraatHeader = "İşlem Tarihi,Valör Tarihi,İşlem Tutarı,Komisyon Tutarı,Komisyon Oranı,Taksit Sayısı,İşlem Tipi,Kart Tipi"

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newPipeline() *Pipeline {
	logger := log.New(io.Discard)
	return New(config.Default(), rates.DefaultTable(), logger)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ziraat_temmuz.csv", strings.Join([]string{
		ziraatHeader,
		"15.07.2025,16.07.2025,1000.00,29.50,2.95,1,Satış,Kredi",
		"20.07.2025,21.07.2025,500.00,20.00,4.00,1,Satış,Kredi",
		"22.07.2025,23.07.2025,-200.00,-5.90,2.95,1,İade,Kredi",
	}, "\n"))
	writeFile(t, dir, "vakif_temmuz.csv", strings.Join([]string{
		"ISLEM TARIHI;VALOR TARIHI;ISLEM TUTARI;KOMISYON TUTARI;KOMISYON ORANI;TAKSIT SAYISI;TAKSIT SIRASI;ISLEM TIPI;KART TIPI;BLOKE TUTARI",
		"15/07/2025;16/07/2025;100.00;3.36;3.36;1;1;SATIS;KREDI;0.00",
	}, "\n"))

	res, err := newPipeline().Run(dir)
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	for _, rep := range res.Files {
		assert.NoError(t, rep.Err, rep.File)
	}
	require.Len(t, res.Transactions, 4)

	// Ziraat's table rate is 0.0295: the 1000.00 sale at 29.50
	// matches, the 500.00 sale at 20.00 does not, and the refund is
	// bypassed.
	assert.Equal(t, 1, res.MismatchedCount())

	// Refunds stay out of revenue summaries.
	require.Len(t, res.ByBank, 2)
	assert.Equal(t, "vakifbank", res.ByBank[0].Bank)
	assert.Equal(t, "ziraat", res.ByBank[1].Bank)
	assert.Equal(t, "1500.00", res.ByBank[1].TotalGross.StringFixed(2))
	assert.Equal(t, 2, res.ByBank[1].TransactionCount)

	require.Len(t, res.ByBankPeriod, 2)
	assert.Equal(t, "2025-07", res.ByBankPeriod[0].Period)
}

func TestRunIsolatesBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ziraat_temmuz.csv", strings.Join([]string{
		ziraatHeader,
		"15.07.2025,16.07.2025,1000.00,29.50,2.95,1,Satış,Kredi",
	}, "\n"))
	// Claims to be an Akbank export but carries a header no variant
	// recognizes.
	writeFile(t, dir, "akbank_temmuz.csv", "Tarih,Tutar\n15.07.2025,100.00\n")

	res, err := newPipeline().Run(dir)
	require.NoError(t, err)

	var broken, ok int
	for _, rep := range res.Files {
		if rep.Err != nil {
			broken++
			assert.ErrorIs(t, rep.Err, schema.ErrSchemaMismatch)
		} else {
			ok++
		}
	}
	assert.Equal(t, 1, broken)
	assert.Equal(t, 1, ok)

	// The healthy file's results are intact.
	require.Len(t, res.ByBank, 1)
	assert.Equal(t, "ziraat", res.ByBank[0].Bank)
}

func TestRunUnknownFileReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ziraat_temmuz.csv", strings.Join([]string{
		ziraatHeader,
		"15.07.2025,16.07.2025,1000.00,29.50,2.95,1,Satış,Kredi",
	}, "\n"))
	writeFile(t, dir, "statement_july.csv", "a,b\n1,2\n")

	res, err := newPipeline().Run(dir)
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	var unknown *FileReport
	for i := range res.Files {
		if res.Files[i].File == "statement_july.csv" {
			unknown = &res.Files[i]
		}
	}
	require.NotNil(t, unknown)
	assert.ErrorIs(t, unknown.Err, adapter.ErrUnknownSource)
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ziraat_temmuz.csv", strings.Join([]string{
		ziraatHeader,
		"15.07.2025,16.07.2025,1000.00,29.50,2.95,1,Satış,Kredi",
		"20.07.2025,21.07.2025,500.00,20.00,4.00,3,Satış,Kredi",
		"05.08.2025,06.08.2025,250.00,7.38,2.95,1,Satış,Kredi",
	}, "\n"))
	writeFile(t, dir, "vakif_temmuz.csv", strings.Join([]string{
		"ISLEM TARIHI;VALOR TARIHI;ISLEM TUTARI;KOMISYON TUTARI;KOMISYON ORANI;TAKSIT SAYISI;TAKSIT SIRASI;ISLEM TIPI;KART TIPI;BLOKE TUTARI",
		"15/07/2025;16/07/2025;100.00;3.36;3.36;1;1;SATIS;KREDI;0.00",
		"18/07/2025;19/07/2025;300.00;14.97;4.99;2;1;SATIS;KREDI;0.00",
	}, "\n"))

	serialize := func(res *RunResult) string {
		var buf bytes.Buffer
		require.NoError(t, export.WriteTransactions(&buf, res.Transactions))
		require.NoError(t, export.WriteSummaries(&buf, res.ByBank))
		require.NoError(t, export.WriteSummaries(&buf, res.ByBankPeriod))
		require.NoError(t, export.WriteSummaries(&buf, res.ByBankInstallments))
		return buf.String()
	}

	first, err := newPipeline().Run(dir)
	require.NoError(t, err)
	want := serialize(first)
	require.NotEmpty(t, want)

	// Same input files and rate table must serialize byte for byte
	// the same, no matter how the per-file goroutines interleave.
	for range 5 {
		res, err := newPipeline().Run(dir)
		require.NoError(t, err)
		assert.Equal(t, want, serialize(res))
	}
}

func TestRunEmptyDir(t *testing.T) {
	_, err := newPipeline().Run(t.TempDir())
	assert.Error(t, err)
}

func TestRunSkippedRowsReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ziraat_temmuz.csv", strings.Join([]string{
		ziraatHeader,
		"15.07.2025,16.07.2025,1000.00,29.50,2.95,1,Satış,Kredi",
		"garbage,16.07.2025,xx,29.50,2.95,1,Satış,Kredi",
	}, "\n"))

	res, err := newPipeline().Run(dir)
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	rep := res.Files[0]
	require.NoError(t, rep.Err)
	assert.Equal(t, 1, rep.Transactions)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 3, rep.Skipped[0].Row)
}
