package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"id", "date", "pair", "direction", "timeframe", "strategy",
	"entry_price", "stop_loss", "take_profit", "exit_price", "lots",
	"result", "status", "exits", "images", "notes",
}

// WriteCSV writes trades as CSV with a header row. Stored values are written
// as-is; derived columns belong to the projection, not the export.
func WriteCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range trades {
		err := cw.Write([]string{
			t.ID,
			t.Date,
			t.Pair,
			t.Direction,
			t.Timeframe,
			t.Strategy,
			t.EntryPrice,
			t.StopLoss,
			t.TakeProfit,
			t.ExitPrice,
			t.Lots,
			t.Result,
			t.Status,
			strconv.Itoa(len(t.Exits)),
			strings.Join(t.Images, " "),
			t.Notes,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
