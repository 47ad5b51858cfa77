package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/acentrik/hr-portal/models"
)

// NewPostgresClient opens the Postgres connection and migrates the schema.
func NewPostgresClient(host, user, password, dbname, port string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", host, user, password, dbname, port)

	pgClient, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := pgClient.AutoMigrate(
		&models.User{},
		&models.PasswordHistoryEntry{},
		&models.PasswordResetToken{},
		&models.OfferLetter{},
		&models.UserSession{},
	); err != nil {
		return nil, err
	}

	return pgClient, nil
}
