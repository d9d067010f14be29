package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// Store is an in-memory implementation of appdata.Repository.
// It is safe for concurrent use. Data is lost on restart; set DATABASE_URL
// to use the Postgres store instead.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	revoked    map[string]time.Time
	goals      map[int64]domain.Goal
	budgets    map[string]domain.Budget // userID + "/" + category
	archetypes []domain.Archetype
	logs       []appdata.AppLogEntry
	nextGoalID int64
	configs    map[string]domain.ModelConfig
	models     []domain.TrainedModel
	now        func() time.Time
}

// NewStore creates an empty store seeded with the default archetype table.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		revoked:    make(map[string]time.Time),
		goals:      make(map[int64]domain.Goal),
		budgets:    make(map[string]domain.Budget),
		archetypes: insights.DefaultArchetypes(),
		configs:    make(map[string]domain.ModelConfig),
		now:        time.Now,
	}
}

// CreateUser implements appdata.UserStore.
func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return fmt.Errorf("CreateUser: user %s: %w", u.ID, domain.ErrAlreadyExists)
	}
	for _, other := range s.users {
		if other.DNI == u.DNI {
			return fmt.Errorf("CreateUser: dni %s: %w", u.DNI, domain.ErrAlreadyExists)
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return nil
}

// GetUser implements appdata.UserStore.
func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return domain.User{}, fmt.Errorf("GetUser: user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

// GetUserByDNI implements appdata.UserStore.
func (s *Store) GetUserByDNI(ctx context.Context, dni string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.DNI == dni {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("GetUserByDNI: dni %s: %w", dni, domain.ErrNotFound)
}

// UpdateArchetype implements appdata.UserStore.
func (s *Store) UpdateArchetype(ctx context.Context, id, archetype string, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return fmt.Errorf("UpdateArchetype: user %s: %w", id, domain.ErrNotFound)
	}
	u.Archetype = archetype
	u.Level = level
	s.users[id] = u
	return nil
}

// ListUsers implements appdata.UserStore. Users are ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// RevokeToken implements appdata.TokenBlocklist. Expired entries are pruned
// on each call.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("RevokeToken: %w: token id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = expiresAt
	return nil
}

// IsTokenRevoked implements appdata.TokenBlocklist.
func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, revoked := s.revoked[jti]
	return revoked, nil
}

// ListGoals implements appdata.GoalStore.
func (s *Store) ListGoals(ctx context.Context, userID string, limit int) ([]domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Deadline != b.Deadline {
			return a.Deadline.Before(b.Deadline)
		}
		return a.ID < b.ID
	})
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// CreateGoal implements appdata.GoalStore.
func (s *Store) CreateGoal(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[g.UserID]; !exists {
		return domain.Goal{}, fmt.Errorf("CreateGoal: user %s: %w", g.UserID, domain.ErrNotFound)
	}
	s.nextGoalID++
	g.ID = s.nextGoalID
	if g.Status == "" {
		g.Status = domain.GoalInProgress
	}
	g.UpdatedAt = s.now()
	s.goals[g.ID] = g
	return g, nil
}

// SetGoalNotionPage implements appdata.GoalStore.
func (s *Store) SetGoalNotionPage(ctx context.Context, goalID int64, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, exists := s.goals[goalID]
	if !exists {
		return fmt.Errorf("SetGoalNotionPage: goal %d: %w", goalID, domain.ErrNotFound)
	}
	g.NotionPageID = pageID
	s.goals[goalID] = g
	return nil
}

func budgetKey(userID, category string) string {
	return userID + "/" + category
}

// ListBudgets implements appdata.BudgetStore. Budgets are ordered by category.
func (s *Store) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Budget{}
	for _, b := range s.budgets {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

// GetBudget implements appdata.BudgetStore.
func (s *Store) GetBudget(ctx context.Context, userID, category string) (domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.budgets[budgetKey(userID, category)]
	if !exists {
		return domain.Budget{}, fmt.Errorf("GetBudget: %s: %w", category, domain.ErrNotFound)
	}
	return b, nil
}

// UpsertBudget implements appdata.BudgetStore.
func (s *Store) UpsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	if b.AlertPercent <= 0 {
		b.AlertPercent = domain.DefaultBudgetAlertPercent
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.budgets[budgetKey(b.UserID, b.Category)] = b
	return b, nil
}

// ListArchetypes implements appdata.ArchetypeStore.
func (s *Store) ListArchetypes(ctx context.Context) ([]domain.Archetype, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Archetype(nil), s.archetypes...), nil
}

// RecordAppLog implements appdata.AuditLog.
func (s *Store) RecordAppLog(ctx context.Context, level, message, module string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, appdata.AppLogEntry{
		Timestamp: s.now(),
		Level:     level,
		Message:   message,
		Module:    module,
	})
	return nil
}

// EnsureModelConfig implements appdata.ModelStore.
func (s *Store) EnsureModelConfig(ctx context.Context, cfg domain.ModelConfig) (domain.ModelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.configs[cfg.Version]; ok {
		return existing, nil
	}
	cfg.ID = int64(len(s.configs) + 1)
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = s.now()
	}
	s.configs[cfg.Version] = cfg
	return cfg, nil
}

// SaveTrainedModel implements appdata.ModelStore.
func (s *Store) SaveTrainedModel(ctx context.Context, m domain.TrainedModel) (domain.TrainedModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[m.Version]; !ok {
		return domain.TrainedModel{}, fmt.Errorf("SaveTrainedModel: model config %s: %w", m.Version, domain.ErrNotFound)
	}
	m.ID = int64(len(s.models) + 1)
	if m.UploadedAt.IsZero() {
		m.UploadedAt = s.now()
	}
	s.models = append(s.models, m)
	return m, nil
}

// ListTrainedModels implements appdata.ModelStore.
func (s *Store) ListTrainedModels(ctx context.Context, version string) ([]domain.TrainedModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.TrainedModel{}
	for _, m := range s.models {
		if m.Version == version {
			result = append(result, m)
		}
	}
	return result, nil
}

// AppLogs returns a copy of the recorded app log.
func (s *Store) AppLogs() []appdata.AppLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]appdata.AppLogEntry(nil), s.logs...)
}

// Close implements appdata.Repository.
func (s *Store) Close() error {
	return nil
}

// Ensure Store implements the Repository interface.
var _ appdata.Repository = (*Store)(nil)
