package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
)

// numberPattern matches a signed number of at least two digits that may
// carry space, no-break space or comma separators.
var numberPattern = regexp.MustCompile(`-?\d[\d\s\x{a0},]*\d`)

var spaceStripper = strings.NewReplacer("\u00a0", "", " ", "")

// ParseNumber converts a token such as "1 234 567,89" or "-1 234,00".
// Anything that does not convert is absent.
func ParseNumber(text string) ledger.Value {
	if text == "" {
		return ledger.None
	}
	s := spaceStripper.Replace(text)
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return ledger.None
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return ledger.None
	}
	return ledger.Some(f)
}

// ExtractNumbers returns every number found in cells, in cell order and
// left to right within a cell.
func ExtractNumbers(cells []string) []float64 {
	var nums []float64
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		for _, m := range numberPattern.FindAllString(cell, -1) {
			if v, ok := ParseNumber(m).Get(); ok {
				nums = append(nums, v)
			}
		}
	}
	return nums
}
