package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/zachrip/valpal/pkg/types"
)

type userConfigRow struct {
	UserID    string `gorm:"primaryKey;size:64"`
	Version   int    `gorm:"not null"`
	Loadouts  []byte `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userConfigRow) TableName() string { return "user_configs" }

// GormStore keeps user configs in a shared postgres table so several
// machines can use the same loadouts.
type GormStore struct {
	db      *gorm.DB
	weapons []string
}

var _ Repository = (*GormStore)(nil)

// OpenPostgres connects and migrates the schema.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&userConfigRow{}); err != nil {
		return nil, fmt.Errorf("migrate user configs: %w", err)
	}
	return db, nil
}

func NewGormStore(db *gorm.DB, weaponIDs []string) *GormStore {
	return &GormStore{db: db, weapons: weaponIDs}
}

func (s *GormStore) GetUserConfig(ctx context.Context, userID string) (types.UserConfig, error) {
	if userID == "" {
		return types.UserConfig{}, ErrInvalidUserID
	}

	var row userConfigRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg := DefaultConfig(s.weapons)
		created, err := toRow(userID, cfg)
		if err != nil {
			return types.UserConfig{}, err
		}
		// Another process may create the row first; keep whichever landed.
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&created).Error; err != nil {
			return types.UserConfig{}, fmt.Errorf("create user config: %w", err)
		}
		if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
			return types.UserConfig{}, fmt.Errorf("load user config: %w", err)
		}
	} else if err != nil {
		return types.UserConfig{}, fmt.Errorf("load user config: %w", err)
	}
	return fromRow(row)
}

func (s *GormStore) SaveUserConfig(ctx context.Context, userID string, cfg types.UserConfig) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	cfg.Version = types.ConfigVersion
	row, err := toRow(userID, cfg)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "loadouts", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save user config: %w", err)
	}
	return nil
}

func toRow(userID string, cfg types.UserConfig) (userConfigRow, error) {
	loadouts, err := json.Marshal(cfg.Loadouts)
	if err != nil {
		return userConfigRow{}, fmt.Errorf("encode loadouts: %w", err)
	}
	return userConfigRow{UserID: userID, Version: cfg.Version, Loadouts: loadouts}, nil
}

func fromRow(row userConfigRow) (types.UserConfig, error) {
	cfg := types.UserConfig{Version: row.Version}
	if err := checkVersion(cfg); err != nil {
		return types.UserConfig{}, fmt.Errorf("user %s: %w (got %d)", row.UserID, err, row.Version)
	}
	if err := json.Unmarshal(row.Loadouts, &cfg.Loadouts); err != nil {
		return types.UserConfig{}, fmt.Errorf("decode loadouts: %w", err)
	}
	return cfg, nil
}
