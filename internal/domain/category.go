package domain

import "github.com/shopspring/decimal"

// OtherCategory is the name used when nothing matches.
const OtherCategory = "OTHER"

// Category groups movements for spend analysis.
type Category struct {
	ID               int
	Name             string
	Keywords         []string
	MCCs             []string
	Icon             string
	Color            string
	HighSpendMessage string
	SavingMessage    string
}

// Archetype is a gamified persona ("animal") assigned from spending habits.
type Archetype struct {
	LevelID     int
	Animal      string
	Description string
	Icon        string
	CategoryID  *int // nil for archetypes not tied to a category
	MinSpend    decimal.NullDecimal
	MaxSpend    decimal.NullDecimal
}
