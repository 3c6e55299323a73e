// Package export writes verification results and summaries as CSV for
// spreadsheets and downstream reporting.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/posrecon-dev/posrecon/internal/model"
)

const dateLayout = "2006-01-02"

// TransactionHeader is the CSV header for verified transaction exports.
const TransactionHeader = "bank,bank_name,date,settlement_date,gross,commission,net," +
	"rate,rate_source,installments,installment_no,category,card_type," +
	"rate_expected,commission_expected,commission_diff,rate_match,reason," +
	"source_file,source_row"

const (
	txnFields             = 20
	colBank               = 0
	colBankName           = 1
	colDate               = 2
	colSettlementDate     = 3
	colGross              = 4
	colCommission         = 5
	colNet                = 6
	colRate               = 7
	colRateSource         = 8
	colInstallments       = 9
	colInstallmentNo      = 10
	colCategory           = 11
	colCardType           = 12
	colRateExpected       = 13
	colCommissionExpected = 14
	colCommissionDiff     = 15
	colRateMatch          = 16
	colReason             = 17
	colSourceFile         = 18
	colSourceRow          = 19
)

// MarshalTransaction converts a verified transaction to a CSV row.
func MarshalTransaction(txn model.VerifiedTransaction) []string {
	row := make([]string, txnFields)
	row[colBank] = txn.Bank
	row[colBankName] = txn.BankName
	row[colDate] = txn.Date.Format(dateLayout)
	if !txn.SettlementDate.IsZero() {
		row[colSettlementDate] = txn.SettlementDate.Format(dateLayout)
	}
	row[colGross] = txn.Gross.StringFixed(2)
	row[colCommission] = txn.Commission.StringFixed(2)
	row[colNet] = txn.Net.StringFixed(2)
	row[colRate] = txn.Rate.String()
	row[colRateSource] = string(txn.RateSource)
	row[colInstallments] = strconv.Itoa(txn.Installments)
	row[colInstallmentNo] = strconv.Itoa(txn.InstallmentNo)
	row[colCategory] = string(txn.Category)
	row[colCardType] = txn.CardType
	row[colRateExpected] = txn.RateExpected.String()
	row[colCommissionExpected] = txn.CommissionExpected.StringFixed(2)
	row[colCommissionDiff] = txn.CommissionDiff.StringFixed(2)
	row[colRateMatch] = strconv.FormatBool(txn.RateMatch)
	row[colReason] = txn.Reason
	row[colSourceFile] = txn.SourceFile
	row[colSourceRow] = strconv.Itoa(txn.SourceRow)
	return row
}

// WriteTransactions writes verified transactions as CSV, header first.
func WriteTransactions(w io.Writer, txns []model.VerifiedTransaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(TransactionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing transaction %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryHeader is the CSV header for summary exports.
const SummaryHeader = "bank,period,installments,transaction_count,mismatched_count," +
	"total_gross,total_commission,total_expected,total_diff,total_net,commission_pct"

// MarshalSummary converts a summary to a CSV row.
func MarshalSummary(s model.Summary) []string {
	installments := ""
	if s.Installments > 0 {
		installments = strconv.Itoa(s.Installments)
	}
	return []string{
		s.Bank,
		s.Period,
		installments,
		strconv.Itoa(s.TransactionCount),
		strconv.Itoa(s.MismatchedCount),
		s.TotalGross.StringFixed(2),
		s.TotalCommission.StringFixed(2),
		s.TotalExpected.StringFixed(2),
		s.TotalDiff.StringFixed(2),
		s.TotalNet.StringFixed(2),
		s.CommissionPct().StringFixed(2),
	}
}

// WriteSummaries writes summaries as CSV, header first.
func WriteSummaries(w io.Writer, sums []model.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(SummaryHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range sums {
		if err := cw.Write(MarshalSummary(s)); err != nil {
			return fmt.Errorf("writing summary %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileTimestamp formats a time the way exported file names expect.
func FileTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}
