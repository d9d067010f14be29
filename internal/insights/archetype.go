package insights

import (
	"strings"

	"github.com/dvloznov/banking-coach/internal/domain"
)

// Level suffixes appended to the archetype animal.
const (
	SuffixNovice    = "Novice"
	SuffixJunior    = "Junior"
	SuffixMaster    = "Master"
	SuffixLegendary = "Legendary"
)

// DefaultArchetypeAnimal names the archetype used when no category matches.
const DefaultArchetypeAnimal = "Sloth"

// ArchetypeTable is the archetype configuration: one entry per spending
// category plus the fallback used when the top category has none.
type ArchetypeTable struct {
	ByCategory map[int]domain.Archetype
	Default    domain.Archetype
}

// NewArchetypeTable indexes archetypes by category and picks the fallback by
// animal name. If no archetype carries that name a bare one is synthesized.
func NewArchetypeTable(archetypes []domain.Archetype, defaultAnimal string) ArchetypeTable {
	table := ArchetypeTable{
		ByCategory: make(map[int]domain.Archetype),
		Default:    domain.Archetype{LevelID: 1, Animal: defaultAnimal},
	}
	for _, a := range archetypes {
		if strings.EqualFold(a.Animal, defaultAnimal) {
			table.Default = a
		}
		if a.CategoryID != nil {
			if _, taken := table.ByCategory[*a.CategoryID]; !taken {
				table.ByCategory[*a.CategoryID] = a
			}
		}
	}
	return table
}

// Lookup returns the archetype for a category id, or the fallback.
func (t ArchetypeTable) Lookup(categoryID *int) domain.Archetype {
	if categoryID != nil {
		if a, ok := t.ByCategory[*categoryID]; ok {
			return a
		}
	}
	return t.Default
}

// ArchetypeResult is the archetype assigned to a user for a period.
type ArchetypeResult struct {
	Animal      string `json:"animal"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Suffix      string `json:"suffix"`
	Level       int    `json:"level"`
}

// LevelSuffix derives the suffix and numeric level from bucket counts.
// Large wins ties against both other bands; medium wins ties against small.
func LevelSuffix(counts BucketCounts) (string, int) {
	if counts.Total() == 0 {
		return SuffixNovice, 1
	}
	switch {
	case counts.Large >= counts.Medium && counts.Large >= counts.Small:
		return SuffixLegendary, 3
	case counts.Medium >= counts.Small:
		return SuffixMaster, 2
	default:
		return SuffixJunior, 1
	}
}

// AssignArchetype picks the archetype for the top spending category and
// qualifies it with the level suffix.
func AssignArchetype(table ArchetypeTable, topCategoryID *int, counts BucketCounts) ArchetypeResult {
	a := table.Lookup(topCategoryID)
	suffix, level := LevelSuffix(counts)
	return ArchetypeResult{
		Animal:      a.Animal,
		Label:       a.Animal + " " + suffix,
		Icon:        a.Icon,
		Description: a.Description,
		Suffix:      suffix,
		Level:       level,
	}
}

// DefaultArchetypes seeds the archetype configuration for the default categories.
func DefaultArchetypes() []domain.Archetype {
	cat := func(id int) *int { return &id }
	return []domain.Archetype{
		{LevelID: 1, Animal: DefaultArchetypeAnimal, Description: "You still find it hard to put your savings to work.", Icon: "sloth.png"},
		{LevelID: 2, Animal: "Bear", Description: "Good food is your weakness; plan meals to keep it in check.", Icon: "bear.png", CategoryID: cat(1)},
		{LevelID: 3, Animal: "Cheetah", Description: "Always on the move; your transport bill says so.", Icon: "cheetah.png", CategoryID: cat(2)},
		{LevelID: 4, Animal: "Ant", Description: "Steady and methodical; your fixed bills lead your spending.", Icon: "ant.png", CategoryID: cat(3)},
		{LevelID: 5, Animal: "Owl", Description: "You look after your health first.", Icon: "owl.png", CategoryID: cat(4)},
		{LevelID: 6, Animal: "Squirrel", Description: "You like cash in hand; track where it goes.", Icon: "squirrel.png", CategoryID: cat(5)},
	}
}
