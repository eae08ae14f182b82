package metrics

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/rustyeddy/tradejournal/journal"
)

// price renders pipettes as a five-decimal price string, e.g. 110000 -> "1.10000".
func price(pipettes int) string {
	return fmt.Sprintf("%d.%05d", pipettes/100000, pipettes%100000)
}

func analysisFields(t *journal.Trade) []*string {
	return []*string{
		&t.ReasonForEntry, &t.RiskRewardRatio, &t.StopLossReason, &t.TakeProfitReason,
		&t.ActualEntryPrice, &t.RRAchieved, &t.PipsGainedLost, &t.WhatWentWell,
		&t.WhatWentWrong, &t.MoodBeforeTrade, &t.ThingToImprove,
	}
}

func TestCalculatorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("derived result follows price comparison", prop.ForAll(
		func(entry, exit int) bool {
			got := Classify(journal.Trade{Pair: "EURUSD", EntryPrice: price(entry), ExitPrice: price(exit)})
			switch {
			case exit > entry:
				return got == journal.ResultWin
			case exit < entry:
				return got == journal.ResultLoss
			default:
				return got == journal.ResultBreakeven
			}
		},
		gen.IntRange(50000, 250000),
		gen.IntRange(50000, 250000),
	))

	properties.Property("stored result is shown verbatim", prop.ForAll(
		func(entry, exit int, stored string) bool {
			tr := journal.Trade{EntryPrice: price(entry), ExitPrice: price(exit), Result: stored}
			return Classify(tr) == stored
		},
		gen.IntRange(50000, 250000),
		gen.IntRange(50000, 250000),
		gen.OneConstOf(journal.ResultOpen, journal.ResultWin, journal.ResultLoss, journal.ResultBreakeven),
	))

	properties.Property("pip distance sign matches the derived result", prop.ForAll(
		func(entry, exit int) bool {
			tr := journal.Trade{Pair: "GBPUSD", EntryPrice: price(entry), ExitPrice: price(exit)}
			d, ok := PipDistance(tr.Pair, tr.EntryPrice, tr.ExitPrice)
			if !ok {
				return false
			}
			// A sub-pip move can round to zero but never to the wrong side.
			switch Classify(tr) {
			case journal.ResultWin:
				return d >= 0
			case journal.ResultLoss:
				return d <= 0
			default:
				return d == 0
			}
		},
		gen.IntRange(50000, 250000),
		gen.IntRange(50000, 250000),
	))

	properties.Property("filling an empty analysis field never lowers completeness", prop.ForAll(
		func(mask []bool, idx int) bool {
			var tr journal.Trade
			fields := analysisFields(&tr)
			for i, filled := range mask {
				if filled {
					*fields[i] = "x"
				}
			}
			before := Completeness(tr)
			if *fields[idx] == "" {
				*fields[idx] = "filled"
			}
			after := Completeness(tr)
			return after >= before && after <= 100
		},
		gen.SliceOfN(11, gen.Bool()),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
