package journal

import "time"

// Weekly holds one week of pair analysis.
type Weekly struct {
	WeekKey   string                `json:"weekKey"`
	Pairs     []CurrencyPair        `json:"pairs"`
	Reviews   map[string]PairReview `json:"reviews"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type CurrencyPair struct {
	Pair      string `json:"pair"`
	Bid       string `json:"bid"`
	Ask       string `json:"ask"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// PairReview is the top-down analysis of a single pair for the week.
type PairReview struct {
	Timeframes   *Timeframes    `json:"timeframes,omitempty"`
	Bias         string         `json:"bias,omitempty"`
	Levels       []Level        `json:"levels,omitempty"`
	Observations string         `json:"observations,omitempty"`
	Plan         *TradingPlan   `json:"plan,omitempty"`
	Progress     *DailyProgress `json:"progress,omitempty"`
	Review       *WeeklyReview  `json:"review,omitempty"`
}

type Timeframes struct {
	Monthly TimeframeAnalysis `json:"monthly"`
	Weekly  TimeframeAnalysis `json:"weekly"`
	Daily   TimeframeAnalysis `json:"daily"`
}

type TimeframeAnalysis struct {
	Trend string `json:"trend"`
	Notes string `json:"notes"`
}

// Level is a marked zone: Supply, Demand, Order Block, Imbalance or Other.
type Level struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Note string `json:"note"`
}

type TradingPlan struct {
	WeeklyPlan    string `json:"weeklyPlan,omitempty"`
	EntryTriggers string `json:"entryTriggers,omitempty"`
	Invalidation  string `json:"invalidation,omitempty"`
	Risk          string `json:"risk,omitempty"`
	Plan          string `json:"plan,omitempty"`
}

// DailyProgress maps day -> checklist item -> done.
type DailyProgress struct {
	Daily map[string]map[string]bool `json:"daily"`
}

type WeeklyReview struct {
	Notes   string   `json:"notes"`
	Result  string   `json:"result,omitempty"`
	Answers []string `json:"answers,omitempty"`
}

// WeekKey returns the Monday of t's week as YYYY-MM-DD. Weeks start on Monday.
func WeekKey(t time.Time) string {
	day := int(t.Weekday())
	if day == 0 {
		day = 7
	}
	monday := t.AddDate(0, 0, -(day - 1))
	return monday.Format(time.DateOnly)
}

// RecentWeekKeys lists the n most recent week keys, newest first.
func RecentWeekKeys(now time.Time, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, WeekKey(now.AddDate(0, 0, -7*i)))
	}
	return out
}
