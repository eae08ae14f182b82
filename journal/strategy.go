package journal

import "time"

// Section kinds.
const (
	SectionText  = "text"
	SectionRules = "rules"
)

// Strategy is one playbook entry.
type Strategy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	WinRate     string    `json:"winRate"`
	RiskReward  string    `json:"riskReward"`
	Sections    []Section `json:"sections"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Section is a named group inside a strategy. A rules section carries colored
// subsections, each with its own checklist; a text section is free prose.
type Section struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Text        string       `json:"text,omitempty"`
	Subsections []Subsection `json:"subsections,omitempty"`
}

type Subsection struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Text      string          `json:"text"`
	Image     *string         `json:"image"`
	CheckList []ChecklistItem `json:"checkList"`
}

type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Normalize fills Kind for sections stored before kinds existed.
func (s *Strategy) Normalize() {
	for i := range s.Sections {
		if s.Sections[i].Kind != "" {
			continue
		}
		if len(s.Sections[i].Subsections) > 0 {
			s.Sections[i].Kind = SectionRules
		} else {
			s.Sections[i].Kind = SectionText
		}
	}
}

// Checklist flattens every checklist item of the rules sections, in order.
// The trade form shows these as the strategy checklist.
func (s Strategy) Checklist() []ChecklistItem {
	var out []ChecklistItem
	for _, sec := range s.Sections {
		if sec.Kind != SectionRules {
			continue
		}
		for _, sub := range sec.Subsections {
			out = append(out, sub.CheckList...)
		}
	}
	return out
}

// RuleCard is a pinboard note placed on a strategy section.
type RuleCard struct {
	ID         string    `json:"id"`
	StrategyID string    `json:"strategyId"`
	SectionID  string    `json:"sectionId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Color      string    `json:"color"`
	Position   Position  `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func textSection(id, name string) Section {
	return Section{ID: id, Name: name, Kind: SectionText}
}

func rulesSubsection(id, name, color string) Subsection {
	return Subsection{ID: id, Name: name, Color: color, CheckList: []ChecklistItem{}}
}

// DefaultStrategies is the playbook a fresh install is seeded with.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name:        "Daily Pull back",
			Description: "Trade pullbacks in daily trend",
			Category:    "Pullback",
			WinRate:     "68%",
			RiskReward:  "1:3",
			Sections: []Section{
				textSection("setup", "Setup Description"),
				{
					ID:   "rules",
					Name: "Rules",
					Kind: SectionRules,
					Subsections: []Subsection{
						rulesSubsection("market-condition", "Market Condition", "#FF6B6B"),
						rulesSubsection("potential-setup", "When Setup Looks Like Potential", "#4ECDC4"),
						rulesSubsection("ongoing-development", "Ongoing Development", "#45B7D1"),
						rulesSubsection("real-candidate", "Real Candidate", "#96CEB4"),
						rulesSubsection("entry-condition", "Entry Condition", "#FFEAA7"),
						rulesSubsection("exit-condition", "Exit Condition", "#DDA0DD"),
						rulesSubsection("trade-management", "Trade Management", "#98D8C8"),
					},
				},
				textSection("examples", "Examples"),
			},
		},
		{
			Name:        "Support/Resistance Breakout",
			Description: "Trade breakouts from key levels",
			Category:    "Breakout",
			WinRate:     "58%",
			RiskReward:  "1:3",
			Sections: []Section{
				textSection("setup", "Setup Description"),
				textSection("rules", "Rules"),
				textSection("backtest", "Backtest Results"),
			},
		},
		{
			Name:        "Price Action Reversal",
			Description: "Candlestick pattern reversals",
			Category:    "Reversal",
			WinRate:     "72%",
			RiskReward:  "1:2",
			Sections: []Section{
				textSection("setup", "Setup Description"),
				textSection("rules", "Rules"),
				textSection("patterns", "Patterns"),
			},
		},
		{
			Name:        "Fibonacci Retracement",
			Description: "Trade retracements at key fib levels",
			Category:    "Retracement",
			WinRate:     "61%",
			RiskReward:  "1:2.8",
			Sections: []Section{
				textSection("setup", "Setup Description"),
				textSection("rules", "Rules"),
				textSection("levels", "Key Levels"),
			},
		},
	}
}
