// Package coach assembles the financial context of a user and turns it into
// advice through a language model.
package coach

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/corebanking"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// ContextGoals is how many goals, nearest deadline first, enter the context.
const ContextGoals = 3

// SourceCore labels figures that come from the core-banking system.
const SourceCore = "core_banking"

// FinancialHealth is the income/expense view of the activity window.
type FinancialHealth struct {
	Period    insights.Period           `json:"period"`
	Income    decimal.Decimal           `json:"income"`
	Expense   decimal.Decimal           `json:"expense"`
	Balance   decimal.Decimal           `json:"balance"`
	Liquidity decimal.Decimal           `json:"liquidity"`
	Profile   insights.FinancialProfile `json:"profile"`
}

// SpendingBehavior is the per-category and per-size view of the window.
type SpendingBehavior struct {
	TopCategory    *insights.CategoryTotal  `json:"top_category"`
	CategoryTotals []insights.CategoryTotal `json:"category_totals"`
	Buckets        insights.BucketCounts    `json:"buckets"`
}

// UserProfile is the app side identity of the user.
type UserProfile struct {
	Nickname  string                   `json:"nickname"`
	Archetype insights.ArchetypeResult `json:"archetype"`
}

// GoalView is a goal with its computed progress and risk.
type GoalView struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Target          decimal.Decimal `json:"target"`
	Saved           decimal.Decimal `json:"saved"`
	ProgressPercent float64         `json:"progress_percent"`
	Deadline        civil.Date      `json:"deadline"`
	DaysRemaining   int             `json:"days_remaining"`
	Risk            insights.Risk   `json:"risk"`
	Icon            string          `json:"icon,omitempty"`
	Status          string          `json:"status"`
}

// Context is everything the coach knows about a user at one instant.
type Context struct {
	Source           string           `json:"source"`
	GeneratedAt      time.Time        `json:"generated_at"`
	ClientCode       string           `json:"client_code"`
	FinancialHealth  FinancialHealth  `json:"financial_health"`
	SpendingBehavior SpendingBehavior `json:"spending_behavior"`
	User             UserProfile      `json:"user_profile"`
	Goals            []GoalView       `json:"goals"`
}

// Profile is the financial profile and archetype of a user, without goals.
type Profile struct {
	ClientCode string                    `json:"client_code"`
	Period     insights.Period           `json:"period"`
	Financial  insights.FinancialProfile `json:"financial_profile"`
	Archetype  insights.ArchetypeResult  `json:"archetype"`
	Buckets    insights.BucketCounts     `json:"buckets"`
	Income     decimal.Decimal           `json:"income"`
	Expense    decimal.Decimal           `json:"expense"`
	Balance    decimal.Decimal           `json:"balance"`
}

// ProfileSource provides the profile 360 transaction of the core.
type ProfileSource interface {
	Profile360(ctx context.Context, clientCode string) (corebanking.Profile360, error)
}

// Stores is the app data the context builder reads.
type Stores interface {
	appdata.UserStore
	appdata.GoalStore
	appdata.ArchetypeStore
}

// Builder assembles coach contexts and profiles.
type Builder struct {
	core   ProfileSource
	stores Stores
	now    func() time.Time
}

// NewBuilder creates a context builder.
func NewBuilder(core ProfileSource, stores Stores) *Builder {
	return &Builder{core: core, stores: stores, now: time.Now}
}

// ViewGoals evaluates each goal as of today.
func ViewGoals(goals []domain.Goal, today civil.Date) []GoalView {
	views := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		st := insights.EvaluateGoal(g.Target, g.Saved, g.Deadline, today)
		views = append(views, GoalView{
			ID:              g.ID,
			Title:           g.Title,
			Target:          g.Target,
			Saved:           g.Saved,
			ProgressPercent: st.ProgressPercent(),
			Deadline:        g.Deadline,
			DaysRemaining:   st.DaysRemaining,
			Risk:            st.Risk,
			Icon:            g.Icon,
			Status:          g.Status,
		})
	}
	return views
}

// profile360 reads the profile from the core and recomputes its derived
// fields, whatever the gateway filled in.
func (b *Builder) profile360(ctx context.Context, clientCode string) (corebanking.Profile360, error) {
	p, err := b.core.Profile360(ctx, clientCode)
	if err != nil {
		return corebanking.Profile360{}, err
	}
	return p.Normalize(), nil
}

func (b *Builder) archetypeFor(ctx context.Context, p corebanking.Profile360) (insights.ArchetypeResult, error) {
	archetypes, err := b.stores.ListArchetypes(ctx)
	if err != nil {
		return insights.ArchetypeResult{}, fmt.Errorf("list archetypes: %w", err)
	}
	table := insights.NewArchetypeTable(archetypes, insights.DefaultArchetypeAnimal)
	return insights.AssignArchetype(table, p.TopCategoryID(), p.Buckets), nil
}

// Profile computes the financial profile and archetype of a client.
func (b *Builder) Profile(ctx context.Context, clientCode string) (Profile, error) {
	p, err := b.profile360(ctx, clientCode)
	if err != nil {
		return Profile{}, fmt.Errorf("Profile: %w", err)
	}
	archetype, err := b.archetypeFor(ctx, p)
	if err != nil {
		return Profile{}, fmt.Errorf("Profile: %w", err)
	}
	return Profile{
		ClientCode: p.ClientCode,
		Period:     p.Period,
		Financial:  p.Profile,
		Archetype:  archetype,
		Buckets:    p.Buckets,
		Income:     p.Income,
		Expense:    p.Expense,
		Balance:    p.Balance,
	}, nil
}

// Build assembles the full context for a user.
func (b *Builder) Build(ctx context.Context, userID, clientCode string) (Context, error) {
	p, err := b.profile360(ctx, clientCode)
	if err != nil {
		return Context{}, fmt.Errorf("Build: %w", err)
	}
	user, err := b.stores.GetUser(ctx, userID)
	if err != nil {
		return Context{}, fmt.Errorf("Build: %w", err)
	}
	archetype, err := b.archetypeFor(ctx, p)
	if err != nil {
		return Context{}, fmt.Errorf("Build: %w", err)
	}
	goals, err := b.stores.ListGoals(ctx, userID, ContextGoals)
	if err != nil {
		return Context{}, fmt.Errorf("Build: list goals: %w", err)
	}

	now := b.now()
	categories := p.CategoryTotals
	if categories == nil {
		categories = []insights.CategoryTotal{}
	}
	return Context{
		Source:      SourceCore,
		GeneratedAt: now.UTC(),
		ClientCode:  p.ClientCode,
		FinancialHealth: FinancialHealth{
			Period:    p.Period,
			Income:    p.Income,
			Expense:   p.Expense,
			Balance:   p.Balance,
			Liquidity: p.Liquidity,
			Profile:   p.Profile,
		},
		SpendingBehavior: SpendingBehavior{
			TopCategory:    p.TopCategory,
			CategoryTotals: categories,
			Buckets:        p.Buckets,
		},
		User: UserProfile{
			Nickname:  user.Nickname,
			Archetype: archetype,
		},
		Goals: ViewGoals(goals, civil.DateOf(now)),
	}, nil
}
