package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/metrics"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	winStyle  = cellStyle.Foreground(lipgloss.Color("#10B981"))
	lossStyle = cellStyle.Foreground(lipgloss.Color("#EF4444"))
	openStyle = cellStyle.Foreground(lipgloss.Color("#F59E0B"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Width(14)
)

var rowHeaders = []string{"ID", "Date", "Pair", "Dir", "TF", "Setup", "Entry", "SL", "TP", "Exit", "Lots", "Result", "Pips/RR", "P&L", "Done"}

const resultCol = 11

func rowCells(r metrics.DisplayRow) []string {
	return []string{
		r.ID, r.TradeDate, r.Pair, r.Direction, r.Timeframe, r.Setup,
		r.EntryPrice, r.StopLoss, r.TakeProfit, r.ExitPrice, r.Lots,
		r.Result, r.PipsRR, r.ProfitLoss, strconv.Itoa(r.Completeness) + "%",
	}
}

// renderRows draws display rows as a bordered table, coloring the result.
func renderRows(rows []metrics.DisplayRow) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, rowCells(r))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563"))).
		Headers(rowHeaders...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col != resultCol {
				return cellStyle
			}
			switch rows[row].Result {
			case journal.ResultWin:
				return winStyle
			case journal.ResultLoss:
				return lossStyle
			case journal.ResultOpen:
				return openStyle
			}
			return cellStyle
		})
	return t.String()
}

func renderSummary(s metrics.Summary) string {
	line := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Journal summary"),
		line("Trades", strconv.Itoa(s.TotalTrades)),
		line("Win rate", fmt.Sprintf("%d%%", s.WinRate)),
		line("Total move", strconv.FormatFloat(s.TotalProfit, 'f', -1, 64)),
		line("Best", strconv.FormatFloat(s.BestTrade, 'f', -1, 64)),
		line("Worst", strconv.FormatFloat(s.WorstTrade, 'f', -1, 64)),
	)
}
