// journal/journal.go
package journal

import (
	"context"
	"errors"
	"time"
)

// Result values a trade can carry. An empty result means "derive it from prices".
const (
	ResultOpen      = "Open"
	ResultWin       = "Win"
	ResultLoss      = "Loss"
	ResultBreakeven = "Breakeven"
)

// Status values.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Directions.
const (
	Long  = "Long"
	Short = "Short"
)

var (
	// ErrNotFound is returned when no record matches the id and owner.
	ErrNotFound = errors.New("not found")

	// ErrImmutableField is returned when a patch tries to change id or userId.
	ErrImmutableField = errors.New("field is immutable")

	// ErrInvalidValue is returned when a patch value does not fit its field.
	ErrInvalidValue = errors.New("invalid value")

	// ErrConflict is returned when a record with the same id already exists.
	ErrConflict = errors.New("already exists")
)

// InvalidValueError names the field a patch could not apply. It matches
// ErrInvalidValue.
type InvalidValueError struct {
	Field string
	Err   error
}

func (e *InvalidValueError) Error() string {
	if e.Field == "" {
		return ErrInvalidValue.Error()
	}
	return e.Field + ": " + ErrInvalidValue.Error()
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalidValue }

func (e *InvalidValueError) Unwrap() error { return e.Err }

// Exit is one partial close of a position.
type Exit struct {
	Price      string `json:"price"`
	Lots       string `json:"lots"`
	ProfitLoss string `json:"profitLoss"`
}

// Review is the post-trade write-up attached when a trade is closed out.
type Review struct {
	Notes     string    `json:"notes"`
	HTML      string    `json:"html,omitempty"`
	Images    []string  `json:"images,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Trade is one logged position. Prices are kept as the strings the user typed
// so a half-filled record survives a round trip unchanged.
type Trade struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`

	Pair         string   `json:"pair"`
	Direction    string   `json:"direction"`
	EntryPrice   string   `json:"entryPrice"`
	ExitPrice    string   `json:"exitPrice"`
	StopLoss     string   `json:"stopLoss"`
	TakeProfit   string   `json:"takeProfit"`
	Timeframe    string   `json:"timeframe"`
	Lots         string   `json:"lots"`
	PositionSize string   `json:"positionSize"`
	Broker       string   `json:"broker"`
	EntryTime    string   `json:"entryTime"`
	ExitTime     string   `json:"exitTime"`
	Date         string   `json:"date"`
	Notes        string   `json:"notes"`
	Images       []string `json:"images"`
	Exits        []Exit   `json:"exits"`

	Strategy          string          `json:"strategy"`
	Trigger           string          `json:"trigger"`
	TrendDirection    string          `json:"trendDirection"`
	HTFBias           string          `json:"htfBias"`
	SupportResistance string          `json:"supportResistance"`
	Volatility        string          `json:"volatility"`
	StrategyChecklist map[string]bool `json:"strategyChecklist"`

	ReasonForEntry   string `json:"reasonForEntry"`
	RiskRewardRatio  string `json:"riskRewardRatio"`
	StopLossReason   string `json:"stopLossReason"`
	TakeProfitReason string `json:"takeProfitReason"`
	AlignedWithPlan  string `json:"alignedWithPlan"`
	CriteriaCheck1   bool   `json:"criteriaCheck1"`
	CriteriaCheck2   bool   `json:"criteriaCheck2"`
	CriteriaCheck3   bool   `json:"criteriaCheck3"`
	CriteriaCheck4   bool   `json:"criteriaCheck4"`
	CriteriaCheck5   bool   `json:"criteriaCheck5"`

	ActualEntryPrice string `json:"actualEntryPrice"`
	ActualStopLoss   string `json:"actualStopLoss"`
	ActualTakeProfit string `json:"actualTakeProfit"`
	Slippage         string `json:"slippage"`
	FollowedPlan     string `json:"followedPlan"`
	EntryTiming      string `json:"entryTiming"`
	FomoEntry        string `json:"fomoEntry"`

	RRAchieved              string `json:"rrAchieved"`
	PipsGainedLost          string `json:"pipsGainedLost"`
	ProfitLossAmount        string `json:"profitLossAmount"`
	TimeInTrade             string `json:"timeInTrade"`
	WhatWentWell            string `json:"whatWentWell"`
	WhatWentWrong           string `json:"whatWentWrong"`
	ExitAccordingToPlan     string `json:"exitAccordingToPlan"`
	EarlyExitEmotions       string `json:"earlyExitEmotions"`
	MovedStopTooSoon        string `json:"movedStopTooSoon"`
	HeldTooLong             string `json:"heldTooLong"`
	MarketBehaviorAlignment string `json:"marketBehaviorAlignment"`
	WouldTakeAgain          string `json:"wouldTakeAgain"`

	EmotionalFactors  []string `json:"emotionalFactors"`
	MoodBeforeTrade   string   `json:"moodBeforeTrade"`
	ConfidenceLevel   string   `json:"confidenceLevel"`
	DistractionLevel  string   `json:"distractionLevel"`
	EmotionalTriggers string   `json:"emotionalTriggers"`

	ThingToImprove     string `json:"thingToImprove"`
	FollowedRules      string `json:"followedRules"`
	PlanUpdateRequired string `json:"planUpdateRequired"`
	MistakePatterns    string `json:"mistakePatterns"`

	Result string  `json:"result"`
	Status string  `json:"status"`
	Review *Review `json:"review,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can edit slices and maps freely.
func (t Trade) Clone() Trade {
	c := t
	if t.Images != nil {
		c.Images = append([]string{}, t.Images...)
	}
	if t.Exits != nil {
		c.Exits = append([]Exit{}, t.Exits...)
	}
	if t.EmotionalFactors != nil {
		c.EmotionalFactors = append([]string{}, t.EmotionalFactors...)
	}
	if t.StrategyChecklist != nil {
		c.StrategyChecklist = make(map[string]bool, len(t.StrategyChecklist))
		for k, v := range t.StrategyChecklist {
			c.StrategyChecklist[k] = v
		}
	}
	if t.Review != nil {
		r := *t.Review
		if r.Images != nil {
			r.Images = append([]string{}, r.Images...)
		}
		c.Review = &r
	}
	return c
}

// TradeStore persists trades. Every call is scoped to one owner.
type TradeStore interface {
	ListTrades(ctx context.Context, owner string) ([]Trade, error)
	GetTrade(ctx context.Context, owner, id string) (Trade, error)
	CreateTrade(ctx context.Context, owner string, t Trade) (Trade, error)
	UpdateTrade(ctx context.Context, owner, id string, p Patch) (Trade, error)
	DeleteTrade(ctx context.Context, owner, id string) error
}

// WeeklyStore persists weekly pair analyses.
type WeeklyStore interface {
	GetWeekly(ctx context.Context, owner, weekKey string) (*Weekly, error)
	SaveWeekly(ctx context.Context, owner string, w Weekly) (Weekly, error)
}

// PlaybookStore persists strategies and their rule cards.
type PlaybookStore interface {
	ListStrategies(ctx context.Context) ([]Strategy, error)
	CreateStrategy(ctx context.Context, s Strategy) (Strategy, error)
	UpdateStrategy(ctx context.Context, id string, p Patch) (Strategy, error)
	DeleteStrategy(ctx context.Context, id string) error
	SeedStrategies(ctx context.Context, seed []Strategy) (int, error)

	ListRuleCards(ctx context.Context, strategyID, sectionID string) ([]RuleCard, error)
	CreateRuleCard(ctx context.Context, c RuleCard) (RuleCard, error)
	UpdateRuleCard(ctx context.Context, id string, p Patch) (RuleCard, error)
	DeleteRuleCard(ctx context.Context, id string) error
}

// Store is everything the server needs from persistence.
type Store interface {
	TradeStore
	WeeklyStore
	PlaybookStore
	Close() error
}
