package bootstrap

import (
	"errors"
	"fmt"

	"anoa.com/cfptracker/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Event{},
		&entity.Talk{},
		&entity.Proposal{},
		&entity.ScoringCategory{},
		&entity.EventScore{},
		&entity.ScoringSettings{},
		&entity.Activity{},
		&entity.Mention{},
		&entity.Notification{},
		&entity.NotificationPreference{},
		&entity.EventParticipation{},
	)
}

// SeedAdminUser creates the admin account once; later runs leave it untouched.
func SeedAdminUser(db *gorm.DB, email, password string) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		zap.L().Debug("admin user already exists, skipping seed", zap.String("email", email))
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Username:     "admin",
		Email:        email,
		Name:         "Administrator",
		PasswordHash: string(hashed),
		Role:         entity.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	zap.L().Info("admin user seeded", zap.String("email", email))
	return nil
}

// SeedScoringSettings inserts the settings row with the given threshold if it is missing.
func SeedScoringSettings(db *gorm.DB, threshold int) error {
	var settings entity.ScoringSettings
	err := db.First(&settings, entity.ScoringSettingsID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	settings = entity.ScoringSettings{ID: entity.ScoringSettingsID, Threshold: threshold}
	return db.Create(&settings).Error
}

// Run migrates and seeds in one call, as the serve and migrate commands both need.
func Run(db *gorm.DB, adminEmail, adminPassword string, threshold int) error {
	if err := Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := SeedScoringSettings(db, threshold); err != nil {
		return fmt.Errorf("seed scoring settings: %w", err)
	}
	if adminEmail != "" && adminPassword != "" {
		if err := SeedAdminUser(db, adminEmail, adminPassword); err != nil {
			return err
		}
	}
	return nil
}
