package database

import (
	"fmt"

	"slot-reservation-service/config"
	"slot-reservation-service/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func NewPostgresConnection(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL database")

	return db, nil
}

// migrate creates the schema and seeds the role table. The unique indexes
// declared on the entities are the storage backstop for the application
// invariants, so migration failure is fatal.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Slot{},
		&entity.Booking{},
	); err != nil {
		return err
	}

	roles := []entity.Role{
		{ID: entity.RoleIDProvider, RoleName: entity.RoleProvider, Description: "Publishes bookable slots"},
		{ID: entity.RoleIDRequester, RoleName: entity.RoleRequester, Description: "Books slots"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error
}
