// Package issues flags financial anomalies in a facility summary.
package issues

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/shopspring/decimal"
)

// Rule produces a finding when Check returns ok.
type Rule struct {
	Name  string
	Check func(s ledger.Summary, enrollment ledger.Value) (msg string, ok bool)
}

// Messages of the default rules.
const (
	MsgOperatingDeficit   = "Koszty operacyjne przewyższają przychody podstawowe (deficyt operacyjny)."
	MsgOtherOpCosts       = "Występują pozostałe koszty operacyjne, warto sprawdzić ich naturę."
	MsgOtherCostsNature   = "Odnotowano pozostałe koszty rodzajowe > 0."
	MsgEnrollmentMissing  = "Brak liczby uczniów/wychowanków w rejestrze, koszt na ucznia nie został policzony."
	netLossMessagePattern = "Wynik netto ujemny (%s PLN)."
)

// DefaultRules in reporting order. Absent values never trigger a rule
// except the enrollment rule, which exists to report the absence.
var DefaultRules = []Rule{
	{Name: "net_loss", Check: netLoss},
	{Name: "operating_deficit", Check: operatingDeficit},
	{Name: "other_operating_costs", Check: nonZero(ledger.FieldOtherOpCosts, MsgOtherOpCosts)},
	{Name: "other_costs_by_nature", Check: nonZero(ledger.FieldOtherCostsNature, MsgOtherCostsNature)},
	{Name: "enrollment_missing", Check: enrollmentMissing},
}

// Detect evaluates every rule in order; rules are independent.
func Detect(s ledger.Summary, enrollment ledger.Value, rules []Rule) []string {
	out := []string{}
	for _, r := range rules {
		if msg, ok := r.Check(s, enrollment); ok {
			out = append(out, msg)
		}
	}
	return out
}

func netLoss(s ledger.Summary, _ ledger.Value) (string, bool) {
	net, ok := s.Get(ledger.FieldNetResult).Get()
	if !ok || net >= 0 {
		return "", false
	}
	return fmt.Sprintf(netLossMessagePattern, FormatAmount(net)), true
}

func operatingDeficit(s ledger.Summary, _ ledger.Value) (string, bool) {
	costs, okC := s.Get(ledger.FieldOperatingCosts).Get()
	revenue, okR := s.Get(ledger.FieldNetSales).Get()
	if !okC || !okR || costs <= revenue {
		return "", false
	}
	return MsgOperatingDeficit, true
}

func nonZero(field, msg string) func(ledger.Summary, ledger.Value) (string, bool) {
	return func(s ledger.Summary, _ ledger.Value) (string, bool) {
		return msg, s.Get(field).NonZero()
	}
}

func enrollmentMissing(_ ledger.Summary, enrollment ledger.Value) (string, bool) {
	return MsgEnrollmentMissing, !enrollment.Valid
}

// CostPerEnrolled divides cost by enrollment; absent when either is absent
// or enrollment is zero.
func CostPerEnrolled(cost, enrollment ledger.Value) ledger.Value {
	c, okC := cost.Get()
	n, okN := enrollment.Get()
	if !okC || !okN || n == 0 {
		return ledger.None
	}
	return ledger.Some(c / n)
}

var amountFormatter = money.NewFormatter(2, ".", ",", "", "1")

// FormatAmount renders v with two decimals and comma thousands separators,
// e.g. -1,234,567.89.
func FormatAmount(v float64) string {
	cents := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return amountFormatter.Format(cents)
}
