package rates

import "github.com/shopspring/decimal"

// DefaultTable returns the shipped rate table, used when no rates file
// exists yet. Aliases carry the display names the bank exports use, so
// lookups by either key or full legal name resolve.
func DefaultTable() *Table {
	t := NewTable()

	add := func(bank string, aliases []string, byInstallments map[int]string) {
		for installments, rate := range byInstallments {
			t.Set(bank, installments, decimal.RequireFromString(rate))
		}
		t.SetAliases(bank, aliases)
	}

	add("vakifbank",
		[]string{"Vakıfbank", "T. VAKIFLAR BANKASI T.A.O."},
		map[int]string{1: "0.0336", 2: "0.0499", 3: "0.0690"})
	add("ziraat",
		[]string{"Ziraat", "ZİRAAT BANKASI", "T.C. ZİRAAT BANKASI A.Ş."},
		map[int]string{1: "0.0295", 2: "0.0489", 3: "0.0680"})
	add("akbank",
		[]string{"Akbank", "AKBANK T.A.S."},
		map[int]string{1: "0.0360", 2: "0.0586", 3: "0.0773"})
	add("garanti",
		[]string{"Garanti", "T. GARANTI BANKASI A.S."}, nil)
	add("halkbank",
		[]string{"Halkbank", "T. HALK BANKASI A.S."}, nil)
	add("qnb",
		[]string{"QNB", "QNB Finansbank", "FINANSBANK A.S."}, nil)
	add("ykb",
		[]string{"Yapı Kredi", "YAPI VE KREDI BANKASI A.S."}, nil)
	add("isbank",
		[]string{"İş Bankası", "T. IS BANKASI A.S."}, nil)

	// A fresh table starts at version 0 regardless of how it was
	// assembled.
	t.mu.Lock()
	t.version = 0
	t.mu.Unlock()
	return t
}
