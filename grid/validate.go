package grid

import "strings"

// ValidationError names the first required field a draft is missing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var required = []struct {
	field   string
	message string
	value   func(Draft) string
}{
	{"pair", "Please select a currency pair", func(d Draft) string { return d.Pair }},
	{"entryPrice", "Entry price is required", func(d Draft) string { return d.EntryPrice }},
	{"exitPrice", "Exit price is required", func(d Draft) string { return d.ExitPrice }},
	{"stopLoss", "Stop loss is required", func(d Draft) string { return d.StopLoss }},
	{"takeProfit", "Take profit is required", func(d Draft) string { return d.TakeProfit }},
}

// Validate checks the required fields in form order and reports the first
// one that is blank.
func Validate(d Draft) error {
	for _, r := range required {
		if strings.TrimSpace(r.value(d)) == "" {
			return &ValidationError{Field: r.field, Message: r.message}
		}
	}
	return nil
}
