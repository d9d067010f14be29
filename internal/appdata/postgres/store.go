// Package postgres implements appdata.Repository on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{
		&UserModel{},
		&RevokedTokenModel{},
		&GoalModel{},
		&BudgetModel{},
		&ArchetypeModel{},
		&AppLogModel{},
		&ModelConfigModel{},
		&TrainedModelModel{},
	}
}

// Store is the gorm-backed app data repository.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to dsn. sslmode=require is appended when the DSN does not
// set an sslmode.
func Open(dsn string, log zerolog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("Open: %w: DATABASE_URL is empty", domain.ErrInvalidInput)
	}
	if !strings.Contains(dsn, "sslmode") {
		if strings.Contains(dsn, "?") {
			dsn += "&sslmode=require"
		} else {
			dsn += "?sslmode=require"
		}
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("Open: connect: %w", err)
	}
	log.Info().Msg("Connected to app database")
	return &Store{db: db, log: log}, nil
}

// Migrate creates or updates the app tables and seeds the archetype table
// when it is empty.
func (s *Store) Migrate(ctx context.Context) error {
	s.log.Info().Msg("Running app database migrations")
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("Migrate: auto migrate: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&ArchetypeModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("Migrate: count archetypes: %w", err)
	}
	if count == 0 {
		rows := make([]ArchetypeModel, 0)
		for _, a := range insights.DefaultArchetypes() {
			rows = append(rows, archetypeModelFrom(a))
		}
		if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("Migrate: seed archetypes: %w", err)
		}
		s.log.Info().Int("count", len(rows)).Msg("Seeded archetype table")
	}
	return nil
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// CreateUser implements appdata.UserStore.
func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	m := userModelFrom(u)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate("CreateUser", err)
	}
	return nil
}

// GetUser implements appdata.UserStore.
func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	var m UserModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.User{}, translate("GetUser", err)
	}
	return m.toDomain(), nil
}

// GetUserByDNI implements appdata.UserStore.
func (s *Store) GetUserByDNI(ctx context.Context, dni string) (domain.User, error) {
	var m UserModel
	if err := s.db.WithContext(ctx).First(&m, "dni = ?", dni).Error; err != nil {
		return domain.User{}, translate("GetUserByDNI", err)
	}
	return m.toDomain(), nil
}

// UpdateArchetype implements appdata.UserStore.
func (s *Store) UpdateArchetype(ctx context.Context, id, archetype string, level int) error {
	res := s.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).
		Updates(map[string]any{"archetype": archetype, "level": level})
	if res.Error != nil {
		return translate("UpdateArchetype", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("UpdateArchetype: user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListUsers implements appdata.UserStore.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []UserModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate("ListUsers", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, m.toDomain())
	}
	return users, nil
}

// RevokeToken implements appdata.TokenBlocklist. Expired entries are purged
// in the same transaction.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("RevokeToken: %w: token id is required", domain.ErrInvalidInput)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at < ?", time.Now()).Delete(&RevokedTokenModel{}).Error; err != nil {
			return translate("RevokeToken: purge", err)
		}
		row := RevokedTokenModel{JTI: jti, ExpiresAt: expiresAt}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return translate("RevokeToken: insert", err)
		}
		return nil
	})
}

// IsTokenRevoked implements appdata.TokenBlocklist.
func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&RevokedTokenModel{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, translate("IsTokenRevoked", err)
	}
	return count > 0, nil
}

// ListGoals implements appdata.GoalStore.
func (s *Store) ListGoals(ctx context.Context, userID string, limit int) ([]domain.Goal, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("deadline ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []GoalModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, translate("ListGoals", err)
	}
	goals := make([]domain.Goal, 0, len(rows))
	for _, m := range rows {
		goals = append(goals, m.toDomain())
	}
	return goals, nil
}

// CreateGoal implements appdata.GoalStore.
func (s *Store) CreateGoal(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	if g.Status == "" {
		g.Status = domain.GoalInProgress
	}
	m := goalModelFrom(g)
	m.ID = 0
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Goal{}, translate("CreateGoal", err)
	}
	return m.toDomain(), nil
}

// SetGoalNotionPage implements appdata.GoalStore.
func (s *Store) SetGoalNotionPage(ctx context.Context, goalID int64, pageID string) error {
	res := s.db.WithContext(ctx).Model(&GoalModel{}).Where("id = ?", goalID).Update("notion_page_id", pageID)
	if res.Error != nil {
		return translate("SetGoalNotionPage", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("SetGoalNotionPage: goal %d: %w", goalID, domain.ErrNotFound)
	}
	return nil
}

// ListBudgets implements appdata.BudgetStore.
func (s *Store) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	var rows []BudgetModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("category").Find(&rows).Error; err != nil {
		return nil, translate("ListBudgets", err)
	}
	budgets := make([]domain.Budget, 0, len(rows))
	for _, m := range rows {
		budgets = append(budgets, m.toDomain())
	}
	return budgets, nil
}

// GetBudget implements appdata.BudgetStore.
func (s *Store) GetBudget(ctx context.Context, userID, category string) (domain.Budget, error) {
	var m BudgetModel
	if err := s.db.WithContext(ctx).First(&m, "user_id = ? AND category = ?", userID, category).Error; err != nil {
		return domain.Budget{}, translate("GetBudget", err)
	}
	return m.toDomain(), nil
}

// UpsertBudget implements appdata.BudgetStore.
func (s *Store) UpsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	if b.AlertPercent <= 0 {
		b.AlertPercent = domain.DefaultBudgetAlertPercent
	}
	m := BudgetModel{
		UserID:       b.UserID,
		Category:     b.Category,
		MonthlyLimit: b.MonthlyLimit,
		AlertPercent: b.AlertPercent,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"monthly_limit", "alert_percent"}),
	}).Create(&m).Error
	if err != nil {
		return domain.Budget{}, translate("UpsertBudget", err)
	}
	return m.toDomain(), nil
}

// ListArchetypes implements appdata.ArchetypeStore.
func (s *Store) ListArchetypes(ctx context.Context) ([]domain.Archetype, error) {
	var rows []ArchetypeModel
	if err := s.db.WithContext(ctx).Order("level_id").Find(&rows).Error; err != nil {
		return nil, translate("ListArchetypes", err)
	}
	archetypes := make([]domain.Archetype, 0, len(rows))
	for _, m := range rows {
		archetypes = append(archetypes, m.toDomain())
	}
	return archetypes, nil
}

// RecordAppLog implements appdata.AuditLog.
func (s *Store) RecordAppLog(ctx context.Context, level, message, module string) error {
	row := AppLogModel{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Module:    module,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate("RecordAppLog", err)
	}
	return nil
}

// EnsureModelConfig implements appdata.ModelStore.
func (s *Store) EnsureModelConfig(ctx context.Context, cfg domain.ModelConfig) (domain.ModelConfig, error) {
	if cfg.Parameters == "" {
		cfg.Parameters = "{}"
	}
	attrs := ModelConfigModel{
		Parameters: cfg.Parameters,
		IsActive:   cfg.IsActive,
		CreatedAt:  cfg.CreatedAt,
	}
	var m ModelConfigModel
	err := s.db.WithContext(ctx).
		Where(ModelConfigModel{Version: cfg.Version}).
		Attrs(attrs).
		FirstOrCreate(&m).Error
	if err != nil {
		return domain.ModelConfig{}, translate("EnsureModelConfig", err)
	}
	return m.toDomain(), nil
}

// SaveTrainedModel implements appdata.ModelStore.
func (s *Store) SaveTrainedModel(ctx context.Context, t domain.TrainedModel) (domain.TrainedModel, error) {
	m := trainedModelFrom(t)
	m.ID = 0
	if m.UploadedAt.IsZero() {
		m.UploadedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Omit("Config").Create(&m).Error; err != nil {
		return domain.TrainedModel{}, translate("SaveTrainedModel", err)
	}
	return m.toDomain(), nil
}

// ListTrainedModels implements appdata.ModelStore.
func (s *Store) ListTrainedModels(ctx context.Context, version string) ([]domain.TrainedModel, error) {
	var rows []TrainedModelModel
	if err := s.db.WithContext(ctx).Where("version = ?", version).Order("id").Find(&rows).Error; err != nil {
		return nil, translate("ListTrainedModels", err)
	}
	models := make([]domain.TrainedModel, 0, len(rows))
	for _, m := range rows {
		models = append(models, m.toDomain())
	}
	return models, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ appdata.Repository = (*Store)(nil)
