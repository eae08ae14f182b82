package journal

import (
	"fmt"
	"strings"
)

// FormatTradeOrg renders a trade as an Org-mode block. Structured facts go in
// the PROPERTIES drawer; the written analysis becomes the narrative headings.
func FormatTradeOrg(t Trade) string {
	name := strings.TrimSpace(t.Pair + " " + t.Direction)
	heading := fmt.Sprintf("** Trade: %s (%s)", name, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	prop(&b, "ID", t.ID)
	prop(&b, "DATE", t.Date)
	prop(&b, "PAIR", t.Pair)
	prop(&b, "DIRECTION", t.Direction)
	prop(&b, "TIMEFRAME", t.Timeframe)
	prop(&b, "STRATEGY", t.Strategy)
	prop(&b, "ENTRY_PRICE", t.EntryPrice)
	prop(&b, "STOP_LOSS", t.StopLoss)
	prop(&b, "TAKE_PROFIT", t.TakeProfit)
	prop(&b, "EXIT_PRICE", t.ExitPrice)
	prop(&b, "LOTS", t.Lots)
	prop(&b, "RESULT", t.Result)
	prop(&b, "STATUS", t.Status)
	b.WriteString(":END:\n")
	b.WriteString("\n")

	section(&b, "Thesis", t.ReasonForEntry, t.StopLossReason, t.TakeProfitReason)
	section(&b, "Execution", t.Notes)
	section(&b, "Review", t.WhatWentWell, t.WhatWentWrong, t.ThingToImprove)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func prop(b *strings.Builder, key, val string) {
	if val == "" {
		return
	}
	fmt.Fprintf(b, ":%s: %s\n", key, val)
}

func section(b *strings.Builder, title string, lines ...string) {
	fmt.Fprintf(b, "*** %s\n", title)
	wrote := false
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			fmt.Fprintf(b, "- %s\n", l)
			wrote = true
		}
	}
	if !wrote {
		b.WriteString("- \n")
	}
	b.WriteString("\n")
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
