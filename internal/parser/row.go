package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanLabel replaces no-break spaces, collapses whitespace runs and trims.
func CleanLabel(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeRow turns raw cells into a record. The first cell is the label;
// rows without one are header or separator rows and are dropped.
//
// With two or more numbers the first is the prior period and the last the
// current one. A single number is used for both periods, which is wrong for
// two-column statements where one column is blank.
func NormalizeRow(cells []string) (ledger.Record, bool) {
	if len(cells) == 0 {
		return ledger.Record{}, false
	}
	label := CleanLabel(cells[0])
	if label == "" {
		return ledger.Record{}, false
	}

	rec := ledger.Record{Label: label}
	nums := ExtractNumbers(cells[1:])
	switch {
	case len(nums) >= 2:
		rec.Prior = ledger.Some(nums[0])
		rec.Current = ledger.Some(nums[len(nums)-1])
	case len(nums) == 1:
		rec.Prior = ledger.Some(nums[0])
		rec.Current = ledger.Some(nums[0])
	}
	return rec, true
}
