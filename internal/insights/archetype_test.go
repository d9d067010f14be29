package insights

import (
	"testing"

	"github.com/dvloznov/banking-coach/internal/domain"
)

func TestLevelSuffix(t *testing.T) {
	tests := []struct {
		name       string
		counts     BucketCounts
		wantSuffix string
		wantLevel  int
	}{
		{"no movements", BucketCounts{}, SuffixNovice, 1},
		{"three-way tie goes to large", BucketCounts{Small: 2, Medium: 2, Large: 2}, SuffixLegendary, 3},
		{"large ties medium", BucketCounts{Small: 1, Medium: 3, Large: 3}, SuffixLegendary, 3},
		{"medium ties small", BucketCounts{Small: 4, Medium: 4, Large: 1}, SuffixMaster, 2},
		{"medium leads", BucketCounts{Small: 1, Medium: 5, Large: 0}, SuffixMaster, 2},
		{"small leads", BucketCounts{Small: 9, Medium: 2, Large: 1}, SuffixJunior, 1},
		{"only small", BucketCounts{Small: 1}, SuffixJunior, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suffix, level := LevelSuffix(tt.counts)
			if suffix != tt.wantSuffix || level != tt.wantLevel {
				t.Errorf("LevelSuffix(%+v) = (%s, %d), want (%s, %d)", tt.counts, suffix, level, tt.wantSuffix, tt.wantLevel)
			}
		})
	}
}

func TestAssignArchetype(t *testing.T) {
	table := NewArchetypeTable(DefaultArchetypes(), DefaultArchetypeAnimal)
	food := 1
	unknown := 42

	tests := []struct {
		name       string
		topID      *int
		counts     BucketCounts
		wantAnimal string
		wantLabel  string
		wantLevel  int
	}{
		{"category archetype", &food, BucketCounts{Small: 1, Medium: 2}, "Bear", "Bear Master", 2},
		{"unconfigured category falls back", &unknown, BucketCounts{Large: 1}, "Sloth", "Sloth Legendary", 3},
		{"no top category", nil, BucketCounts{}, "Sloth", "Sloth Novice", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssignArchetype(table, tt.topID, tt.counts)
			if got.Animal != tt.wantAnimal || got.Label != tt.wantLabel || got.Level != tt.wantLevel {
				t.Errorf("AssignArchetype() = %+v, want animal=%s label=%s level=%d", got, tt.wantAnimal, tt.wantLabel, tt.wantLevel)
			}
			if got.Description == "" || got.Icon == "" {
				t.Errorf("AssignArchetype() lost display metadata: %+v", got)
			}
		})
	}
}

func TestNewArchetypeTable_SynthesizesDefault(t *testing.T) {
	catID := 3
	table := NewArchetypeTable([]domain.Archetype{{LevelID: 4, Animal: "Ant", CategoryID: &catID}}, DefaultArchetypeAnimal)

	if table.Default.Animal != DefaultArchetypeAnimal {
		t.Errorf("Default.Animal = %q, want %q", table.Default.Animal, DefaultArchetypeAnimal)
	}
	if got := table.Lookup(&catID); got.Animal != "Ant" {
		t.Errorf("Lookup(3) = %q, want Ant", got.Animal)
	}
}
