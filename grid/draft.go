package grid

import (
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
)

// Form tabs, in display order.
const (
	TabTradeInfo = iota
	TabStrategy
	TabPreTrade
	TabExecution
	TabPostTrade
	TabPsychology
	TabLessons
)

// Draft is the uncommitted state of the trade form. It never holds derived
// values; those are computed from the saved record.
type Draft struct {
	journal.Trade

	// ActiveTab is presentation state and is not persisted.
	ActiveTab int
}

// enumDefaults are the form's preselected answers. Empty values of these
// fields are replaced by the default both for new drafts and for drafts
// loaded from an existing trade.
func enumDefaults(t *journal.Trade) []struct {
	field *string
	value string
} {
	return []struct {
		field *string
		value string
	}{
		{&t.FollowedPlan, "Yes"},
		{&t.EntryTiming, "On Time"},
		{&t.FomoEntry, "No"},
		{&t.ExitAccordingToPlan, "Yes"},
		{&t.EarlyExitEmotions, "No"},
		{&t.MovedStopTooSoon, "No"},
		{&t.HeldTooLong, "No"},
		{&t.MarketBehaviorAlignment, "Yes"},
		{&t.WouldTakeAgain, "Yes"},
		{&t.ConfidenceLevel, "5"},
		{&t.DistractionLevel, "Low"},
		{&t.FollowedRules, "Yes"},
		{&t.PlanUpdateRequired, "No"},
		{&t.Status, journal.StatusOpen},
	}
}

func fillDefaults(t *journal.Trade) {
	for _, d := range enumDefaults(t) {
		if strings.TrimSpace(*d.field) == "" {
			*d.field = d.value
		}
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.Exits == nil {
		t.Exits = []journal.Exit{}
	}
	if t.EmotionalFactors == nil {
		t.EmotionalFactors = []string{}
	}
	if t.StrategyChecklist == nil {
		t.StrategyChecklist = map[string]bool{}
	}
}

// EmptyDraft is the form for a new trade. Every text field is "", every
// check is false, the select fields carry their defaults and the date is now.
// Result is left empty so it is derived from the prices once saved.
func EmptyDraft(now time.Time) Draft {
	var t journal.Trade
	fillDefaults(&t)
	t.Date = now.UTC().Format(time.RFC3339)
	return Draft{Trade: t}
}

// DraftFromTrade copies every field of t into a form, defaulting the blanks.
func DraftFromTrade(t journal.Trade) Draft {
	c := t.Clone()
	fillDefaults(&c)
	return Draft{Trade: c}
}

// Record builds the trade to persist from the draft.
func (d Draft) Record(tradeID string, now time.Time) journal.Trade {
	t := d.Trade.Clone()
	t.ID = tradeID
	t.Pair = strings.TrimSpace(t.Pair)
	if strings.TrimSpace(t.Date) == "" {
		t.Date = now.UTC().Format(time.RFC3339)
	}
	fillDefaults(&t)
	return t
}
