// Package appdata defines the stores owned by the mobile app backend: users,
// revoked tokens, goals, budgets, the archetype table, model uploads and the
// app log.
// Core-banking records live elsewhere and are never written here.
package appdata

import (
	"context"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
)

// UserStore persists app users. IDs and DNIs are unique.
type UserStore interface {
	// CreateUser returns domain.ErrAlreadyExists when the id or dni is taken.
	CreateUser(ctx context.Context, u domain.User) error
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetUserByDNI(ctx context.Context, dni string) (domain.User, error)
	// UpdateArchetype stores the latest archetype label and level of a user.
	UpdateArchetype(ctx context.Context, id, archetype string, level int) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// TokenBlocklist records revoked token ids until they expire.
type TokenBlocklist interface {
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// GoalStore persists savings goals.
type GoalStore interface {
	// ListGoals returns a user's goals by deadline ascending. limit <= 0 means all.
	ListGoals(ctx context.Context, userID string, limit int) ([]domain.Goal, error)
	CreateGoal(ctx context.Context, g domain.Goal) (domain.Goal, error)
	SetGoalNotionPage(ctx context.Context, goalID int64, pageID string) error
}

// BudgetStore persists monthly category budgets, one per user and category.
type BudgetStore interface {
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	GetBudget(ctx context.Context, userID, category string) (domain.Budget, error)
	UpsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error)
}

// ArchetypeStore reads the archetype configuration table.
type ArchetypeStore interface {
	ListArchetypes(ctx context.Context) ([]domain.Archetype, error)
}

// AuditLog appends application events.
type AuditLog interface {
	RecordAppLog(ctx context.Context, level, message, module string) error
}

// ModelStore persists model configurations and uploaded model metadata.
type ModelStore interface {
	// EnsureModelConfig returns the stored configuration of cfg.Version,
	// creating it from cfg when the version is new.
	EnsureModelConfig(ctx context.Context, cfg domain.ModelConfig) (domain.ModelConfig, error)
	// SaveTrainedModel stores m and returns it with its id set. The version
	// must have a configuration.
	SaveTrainedModel(ctx context.Context, m domain.TrainedModel) (domain.TrainedModel, error)
	// ListTrainedModels returns the uploads of a version, oldest first.
	ListTrainedModels(ctx context.Context, version string) ([]domain.TrainedModel, error)
}

// Repository is the full app data store.
type Repository interface {
	UserStore
	TokenBlocklist
	GoalStore
	BudgetStore
	ArchetypeStore
	AuditLog
	ModelStore
	Close() error
}

// AppLogEntry is one application log record.
type AppLogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
	Module    string
}
