// Package classify derives the transaction category (sale or refund)
// from a canonical row using a per-bank rule. Classification is total:
// every row gets exactly one category, defaulting to sale when no
// refund indicator is found.
package classify

import (
	"strings"

	"github.com/posrecon-dev/posrecon/internal/config"
	"github.com/posrecon-dev/posrecon/internal/model"
	"github.com/posrecon-dev/posrecon/internal/schema"
)

// Classifier evaluates one bank's classification rule.
type Classifier struct {
	field   string
	refunds map[string]bool // folded flag values meaning refund
	markers []string        // folded substrings meaning refund
}

// New builds a Classifier from a config rule. A rule with no mode
// classifies everything as a sale.
func New(rule config.ClassifyRule) *Classifier {
	c := &Classifier{field: rule.Field}
	if c.field == "" {
		c.field = schema.FieldTransactionType
	}

	switch rule.Mode {
	case config.ClassifyFlag:
		c.refunds = make(map[string]bool, len(rule.Refunds))
		for _, v := range rule.Refunds {
			c.refunds[schema.Fold(v)] = true
		}
	case config.ClassifyMarker:
		for _, m := range rule.Markers {
			c.markers = append(c.markers, schema.Fold(m))
		}
	}
	return c
}

// Classify returns the category for a canonical row.
func (c *Classifier) Classify(row map[string]string) model.Category {
	value := schema.Fold(row[c.field])
	if value == "" {
		return model.CategorySale
	}

	if c.refunds != nil && c.refunds[value] {
		return model.CategoryRefund
	}
	for _, m := range c.markers {
		if strings.Contains(value, m) {
			return model.CategoryRefund
		}
	}
	return model.CategorySale
}
