package config

// Default returns the shipped configuration for the eight supported
// bank export formats.
func Default() *Config {
	cfg := &Config{
		Defaults: Defaults{
			Encoding:   "utf-8",
			Delimiter:  ",",
			OnRowError: OnRowErrorSkip,
		},
		Verification: VerificationConfig{Epsilon: 0.01},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "posrecon",
			AuthorEmail: "posrecon@localhost",
		},
		Banks: map[string]BankConfig{
			"vakifbank": {
				DisplayName: "T. VAKIFLAR BANKASI T.A.O.",
				FilePattern: "*vakif*",
				Encoding:    "windows-1254",
				Delimiter:   ";",
				DateFormats: []string{"02/01/2006"},
				RatePercent: true,
				Variants: []Variant{{
					Name: "standard",
					Required: []string{
						"ISLEM TARIHI", "ISLEM TUTARI", "KOMISYON TUTARI",
					},
					Columns: map[string]string{
						"ISLEM TARIHI":    "transaction_date",
						"VALOR TARIHI":    "settlement_date",
						"ISLEM TUTARI":    "gross_amount",
						"KOMISYON TUTARI": "commission_amount",
						"KOMISYON ORANI":  "commission_rate",
						"TAKSIT SAYISI":   "installment_count",
						"TAKSIT SIRASI":   "installment_number",
						"ISLEM TIPI":      "transaction_type",
						"KART TIPI":       "card_type",
						"BLOKE TUTARI":    "blocked_amount",
					},
				}},
				Classify: ClassifyRule{
					Mode:    ClassifyMarker,
					Field:   "transaction_type",
					Markers: []string{"iade"},
				},
			},
			"ziraat": {
				DisplayName: "ZİRAAT BANKASI",
				FilePattern: "*ziraat*",
				DateFormats: []string{"02.01.2006", "2006-01-02"},
				RatePercent: true,
				Variants: []Variant{{
					Name: "standard",
					Required: []string{
						"İşlem Tarihi", "İşlem Tutarı", "Komisyon Tutarı",
					},
					Columns: map[string]string{
						"İşlem Tarihi":    "transaction_date",
						"Valör Tarihi":    "settlement_date",
						"İşlem Tutarı":    "gross_amount",
						"Komisyon Tutarı": "commission_amount",
						"Komisyon Oranı":  "commission_rate",
						"Taksit Sayısı":   "installment_count",
						"İşlem Tipi":      "transaction_type",
						"Kart Tipi":       "card_type",
					},
				}},
				Classify: ClassifyRule{
					Mode:    ClassifyMarker,
					Field:   "transaction_type",
					Markers: []string{"iade"},
				},
			},
			"akbank": {
				DisplayName: "AKBANK T.A.S.",
				FilePattern: "*akbank*",
				DateFormats: []string{"02.01.2006", "2006-01-02"},
				Variants: []Variant{{
					Name: "standard",
					Required: []string{
						"ISLEM_TARIHI", "PROVIZYON_TUTAR", "EO_KES_TUTAR",
					},
					Columns: map[string]string{
						"ISLEM_TARIHI":    "transaction_date",
						"VALOR_TARIH":     "settlement_date",
						"PROVIZYON_TUTAR": "gross_amount",
						// KOMISYON_TUTAR is usually zero in Akbank
						// exports; EO_KES_TUTAR carries the real cut.
						"KOMISYON_TUTAR": "commission_amount",
						"EO_KES_TUTAR":   "commission_amount_alt",
						"TAKSIT_SAYISI":  "installment_count",
						"ISLEM_TIPI":     "transaction_type",
						"KART_TIPI":      "card_type",
					},
				}},
				Classify: ClassifyRule{
					Mode:    ClassifyMarker,
					Field:   "transaction_type",
					Markers: []string{"iade"},
				},
			},
			"garanti": {
				DisplayName: "T. GARANTI BANKASI A.S.",
				FilePattern: "*garanti*",
				DateFormats: []string{"02.01.2006"},
				Variants: []Variant{{
					Name: "standard",
					Required: []string{
						"İşlem Tarihi", "İşlem Tutarı", "Komisyon Tutarı",
					},
					Columns: map[string]string{
						"İşlem Tarihi":    "transaction_date",
						"Valör Tarihi":    "settlement_date",
						"İşlem Tutarı":    "gross_amount",
						"Komisyon Tutarı": "commission_amount",
						"Taksit Sayısı":   "installment_count",
						"İşlem Tipi":      "transaction_type",
						"Kart Tipi":       "card_type",
					},
				}},
				// PNLT rows are penalty reversals the bank pays back;
				// they reduce totals like ordinary refunds.
				Classify: ClassifyRule{
					Mode:    ClassifyMarker,
					Field:   "transaction_type",
					Markers: []string{"iade", "pnlt"},
				},
			},
			"halkbank": {
				DisplayName: "T. HALK BANKASI A.S.",
				FilePattern: "*halk*",
				DateFormats: []string{"02.01.2006", "2006-01-02"},
				RatePercent: true,
				SinglePaymentTypes: []string{
					"peşin", "pesin", "tek",
				},
				Variants: []Variant{{
					Name: "standard",
					Required: []string{
						"İşlem Tarihi", "Brüt Tutar", "Komisyon Tutarı",
					},
					Columns: map[string]string{
						"İşlem Tarihi":    "transaction_date",
						"Ödeme Tarihi":    "settlement_date",
						"Brüt Tutar":      "gross_amount",
						"Komisyon Tutarı": "commission_amount",
						"Komisyon Oranı":  "commission_rate",
						"İşlem Tipi":      "transaction_type",
						"Kart Tipi":       "card_type",
					},
				}},
				Classify: ClassifyRule{
					Mode:    ClassifyMarker,
					Field:   "transaction_type",
					Markers: []string{"iade"},
				},
			},
			"qnb": {
				DisplayName:     "FINANSBANK A.S.",
				FilePattern:     "*qnb*",
				DateFormats:     []string{"02.01.2006", "2006-01-02"},
				AbsoluteAmounts: true,
				SinglePaymentTypes: []string{
					"taksitsiz", "peşin", "pesin",
				},
				Variants: []Variant{{
					Name: "standard",
					Required: []string{
						"İşlem Tarihi", "Çözülmüş Alacak Tutarı", "Komisyon Tutarı",
					},
					Columns: map[string]string{
						"İşlem Tarihi":           "transaction_date",
						"Ödeme Tarihi":           "settlement_date",
						"Çözülmüş Alacak Tutarı": "gross_amount",
						"Komisyon Tutarı":        "commission_amount",
						"Komisyon Oranı":         "commission_rate",
						"Taksit Tipi":            "transaction_type",
						"Kart Tipi":              "card_type",
					},
				}},
				Classify: ClassifyRule{
					Mode:    ClassifyMarker,
					Field:   "transaction_type",
					Markers: []string{"iade"},
				},
			},
			"ykb": {
				DisplayName: "YAPI VE KREDI BANKASI A.S.",
				FilePattern: "*ykb*",
				DateFormats: []string{"02.01.2006", "02/01/2006"},
				Variants: []Variant{
					{
						// Current layout: commission split across the
						// installment commission and contribution columns.
						Name: "current",
						Required: []string{
							"Yükleme Tarihi", "İşlem Tutarı", "Taksitli İşlem Komisyonu",
						},
						Columns: map[string]string{
							"Yükleme Tarihi":            "transaction_date",
							"Ödeme Tarihi":              "settlement_date",
							"İşlem Tutarı":              "gross_amount",
							"Taksitli İşlem Komisyonu":  "commission_installment",
							"Katkı Payı TL":             "commission_contribution",
							"Mesaj Tipi":                "transaction_type",
							"Taksit":                    "installment_count",
							"Kart Tipi":                 "card_type",
						},
					},
					{
						Name: "legacy",
						Required: []string{
							"İşlem Tarihi", "Brüt Tutar", "Komisyon Tutarı",
						},
						Columns: map[string]string{
							"İşlem Tarihi":    "transaction_date",
							"Valör Tarihi":    "settlement_date",
							"Brüt Tutar":      "gross_amount",
							"Komisyon Tutarı": "commission_amount",
							"Taksit Sayısı":   "installment_count",
							"İşlem Tipi":      "transaction_type",
							"Kart Tipi":       "card_type",
						},
					},
				},
				Classify: ClassifyRule{
					Mode:    ClassifyMarker,
					Field:   "transaction_type",
					Markers: []string{"iade"},
				},
			},
			"isbank": {
				DisplayName: "T. IS BANKASI A.S.",
				FilePattern: "*isbank*",
				DateFormats: []string{"02.01.2006", "2006-01-02"},
				Variants: []Variant{{
					Name: "standard",
					Required: []string{
						"İşlem Tarihi", "İşlem Tutarı", "Komisyon Tutarı",
					},
					Columns: map[string]string{
						"İşlem Tarihi":    "transaction_date",
						"Valör Tarihi":    "settlement_date",
						"İşlem Tutarı":    "gross_amount",
						"Komisyon Tutarı": "commission_amount",
						"Komisyon Oranı":  "commission_rate",
						"Taksit Sayısı":   "installment_count",
						"İşlem Türü":      "transaction_type",
						"Kart Türü":       "card_type",
					},
				}},
				Classify: ClassifyRule{
					Mode:    ClassifyMarker,
					Field:   "transaction_type",
					Markers: []string{"iade"},
				},
			},
		},
	}
	return cfg
}
