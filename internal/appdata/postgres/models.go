package postgres

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/domain"
)

// UserModel is the app user table. The primary key is the core client code.
type UserModel struct {
	ID           string `gorm:"primaryKey;size:20"`
	DNI          string `gorm:"uniqueIndex;size:8;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Nickname     string `gorm:"size:50"`
	AvatarURL    string `gorm:"size:255"`
	Level        int    `gorm:"default:1"`
	Archetype    string `gorm:"size:50;default:'Sloth'"`
	CreatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

// RevokedTokenModel stores revoked token ids.
type RevokedTokenModel struct {
	JTI       string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (RevokedTokenModel) TableName() string { return "token_blocklist" }

// GoalModel is a savings goal.
type GoalModel struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	UserID       string          `gorm:"index;size:20;not null"`
	Title        string          `gorm:"size:100;not null"`
	Target       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Saved        decimal.Decimal `gorm:"type:numeric(14,2);default:0"`
	Deadline     time.Time       `gorm:"type:date"`
	Icon         string          `gorm:"size:50"`
	Status       string          `gorm:"size:20;default:'IN_PROGRESS'"`
	NotionPageID string          `gorm:"size:64"`
	UpdatedAt    time.Time
}

func (GoalModel) TableName() string { return "goals" }

// BudgetModel is a monthly category budget, unique per user and category.
type BudgetModel struct {
	UserID       string          `gorm:"primaryKey;size:20"`
	Category     string          `gorm:"primaryKey;size:50"`
	MonthlyLimit decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	AlertPercent int             `gorm:"default:80"`
}

func (BudgetModel) TableName() string { return "budgets" }

// ArchetypeModel is one row of the archetype configuration.
type ArchetypeModel struct {
	LevelID     int    `gorm:"primaryKey"`
	Animal      string `gorm:"size:50;not null"`
	Description string `gorm:"type:text"`
	Icon        string `gorm:"size:255"`
	CategoryID  *int
	MinSpend    decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	MaxSpend    decimal.NullDecimal `gorm:"type:numeric(14,2)"`
}

func (ArchetypeModel) TableName() string { return "archetypes" }

// AppLogModel is an application event.
type AppLogModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Timestamp time.Time `gorm:"index"`
	Level     string    `gorm:"size:10"`
	Message   string    `gorm:"type:text"`
	Module    string    `gorm:"size:50"`
}

func (AppLogModel) TableName() string { return "app_logs" }

// ModelConfigModel is one version of the clustering model configuration.
type ModelConfigModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Version    string `gorm:"uniqueIndex;size:20;not null"`
	Parameters string `gorm:"type:jsonb"`
	IsActive   bool   `gorm:"default:false"`
	CreatedAt  time.Time
}

func (ModelConfigModel) TableName() string { return "model_configs" }

// TrainedModelModel records an uploaded model binary stored in GCS.
type TrainedModelModel struct {
	ID         int64            `gorm:"primaryKey;autoIncrement"`
	Version    string           `gorm:"index;size:20;not null"`
	Config     ModelConfigModel `gorm:"foreignKey:Version;references:Version"`
	Filename   string           `gorm:"size:255"`
	URI        string           `gorm:"size:512;not null"`
	Size       int64
	UploadedAt time.Time
}

func (TrainedModelModel) TableName() string { return "trained_models" }

func userModelFrom(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		DNI:          u.DNI,
		PasswordHash: u.PasswordHash,
		Nickname:     u.Nickname,
		AvatarURL:    u.AvatarURL,
		Level:        u.Level,
		Archetype:    u.Archetype,
		CreatedAt:    u.CreatedAt,
	}
}

func (m UserModel) toDomain() domain.User {
	return domain.User{
		ID:           m.ID,
		DNI:          m.DNI,
		PasswordHash: m.PasswordHash,
		Nickname:     m.Nickname,
		AvatarURL:    m.AvatarURL,
		Level:        m.Level,
		Archetype:    m.Archetype,
		CreatedAt:    m.CreatedAt,
	}
}

func goalModelFrom(g domain.Goal) GoalModel {
	return GoalModel{
		ID:           g.ID,
		UserID:       g.UserID,
		Title:        g.Title,
		Target:       g.Target,
		Saved:        g.Saved,
		Deadline:     g.Deadline.In(time.UTC),
		Icon:         g.Icon,
		Status:       g.Status,
		NotionPageID: g.NotionPageID,
		UpdatedAt:    g.UpdatedAt,
	}
}

func (m GoalModel) toDomain() domain.Goal {
	return domain.Goal{
		ID:           m.ID,
		UserID:       m.UserID,
		Title:        m.Title,
		Target:       m.Target,
		Saved:        m.Saved,
		Deadline:     civil.DateOf(m.Deadline),
		Icon:         m.Icon,
		Status:       m.Status,
		NotionPageID: m.NotionPageID,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (m BudgetModel) toDomain() domain.Budget {
	return domain.Budget{
		UserID:       m.UserID,
		Category:     m.Category,
		MonthlyLimit: m.MonthlyLimit,
		AlertPercent: m.AlertPercent,
	}
}

func archetypeModelFrom(a domain.Archetype) ArchetypeModel {
	return ArchetypeModel{
		LevelID:     a.LevelID,
		Animal:      a.Animal,
		Description: a.Description,
		Icon:        a.Icon,
		CategoryID:  a.CategoryID,
		MinSpend:    a.MinSpend,
		MaxSpend:    a.MaxSpend,
	}
}

func (m ArchetypeModel) toDomain() domain.Archetype {
	return domain.Archetype{
		LevelID:     m.LevelID,
		Animal:      m.Animal,
		Description: m.Description,
		Icon:        m.Icon,
		CategoryID:  m.CategoryID,
		MinSpend:    m.MinSpend,
		MaxSpend:    m.MaxSpend,
	}
}

func (m ModelConfigModel) toDomain() domain.ModelConfig {
	return domain.ModelConfig{
		ID:         m.ID,
		Version:    m.Version,
		Parameters: m.Parameters,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
	}
}

func trainedModelFrom(t domain.TrainedModel) TrainedModelModel {
	return TrainedModelModel{
		ID:         t.ID,
		Version:    t.Version,
		Filename:   t.Filename,
		URI:        t.URI,
		Size:       t.Size,
		UploadedAt: t.UploadedAt,
	}
}

func (m TrainedModelModel) toDomain() domain.TrainedModel {
	return domain.TrainedModel{
		ID:         m.ID,
		Version:    m.Version,
		Filename:   m.Filename,
		URI:        m.URI,
		Size:       m.Size,
		UploadedAt: m.UploadedAt,
	}
}
