// Package metrics turns stored trades into the values the journal grid shows.
//
// Everything here is a pure function of the trade. Bad or missing numbers
// never produce an error; they produce an empty or zero value instead.
package metrics

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	jpyPipUnit = decimal.New(1, -2)
	stdPipUnit = decimal.New(1, -4)
	hundred    = decimal.NewFromInt(100)
	ten        = decimal.NewFromInt(10)
	half       = decimal.New(5, -1)
)

// parsePrice reads a price typed by the user. Empty, unparsable and zero
// values all count as absent.
func parsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}
	return d, true
}

func isJPY(pair string) bool {
	return strings.Contains(strings.ToUpper(pair), "JPY")
}

func pipUnit(pair string, entry decimal.Decimal, hasEntry bool) decimal.Decimal {
	if !hasEntry {
		return stdPipUnit
	}
	if isJPY(pair) || entry.GreaterThanOrEqual(hundred) {
		return jpyPipUnit
	}
	return stdPipUnit
}

// PipUnit is the price size of one pip: 0.01 for JPY pairs and anything
// quoted at 100 or more (indices, metals), otherwise 0.0001.
func PipUnit(pair, entry string) float64 {
	e, ok := parsePrice(entry)
	return pipUnit(pair, e, ok).InexactFloat64()
}

// pips returns (exit-entry)/unit rounded to one decimal, half up.
func pips(pair string, entry, exit decimal.Decimal) decimal.Decimal {
	raw := exit.Sub(entry).Div(pipUnit(pair, entry, true))
	return raw.Mul(ten).Add(half).Floor().Div(ten)
}

// PipDistance is the move from entry to exit in pips. It reports false when
// either price is missing or not a number.
func PipDistance(pair, entry, exit string) (float64, bool) {
	e, ok := parsePrice(entry)
	if !ok {
		return 0, false
	}
	x, ok := parsePrice(exit)
	if !ok {
		return 0, false
	}
	return pips(pair, e, x).InexactFloat64(), true
}

// PlannedRR is reward over risk from the entry, stop and target the trade
// was planned with. It is zero when any price is missing or the stop sits on
// the entry.
func PlannedRR(entry, stop, target string) float64 {
	e, ok1 := parsePrice(entry)
	s, ok2 := parsePrice(stop)
	tp, ok3 := parsePrice(target)
	if !ok1 || !ok2 || !ok3 {
		return 0
	}
	risk := e.Sub(s).Abs()
	if risk.IsZero() {
		return 0
	}
	return tp.Sub(e).Abs().Div(risk).Round(2).InexactFloat64()
}
