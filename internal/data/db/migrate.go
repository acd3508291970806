package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

// ContactRecord is the storage schema of a contact. Reads and writes go through
// the SQL statements in sqlres; gorm only manages the DDL.
type ContactRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FirstName   string          `gorm:"size:255;not null"`
	LastName    string          `gorm:"size:255;not null;index:idx_contacts_name,priority:1"`
	Email       *string         `gorm:"size:255"`
	PhoneNumber *string         `gorm:"size:20"`
	Addresses   []AddressRecord `gorm:"foreignKey:ContactID;references:ID"`
}

func (ContactRecord) TableName() string { return "contacts" }

type AddressRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index"`
	Street    string    `gorm:"size:255;not null"`
	ZipCode   string    `gorm:"size:20;not null"`
	City      string    `gorm:"size:255;not null"`
}

func (AddressRecord) TableName() string { return "addresses" }

// AutoMigrate creates or updates the contacts schema, including the
// addresses.contact_id foreign key.
func AutoMigrate(ctx context.Context, logg *logger.Logger, dsn string) error {
	serviceLog := logg.With("service", "Migrator")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return fmt.Errorf("migrate: connect: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer sqlDB.Close()

	serviceLog.Info("Auto migrating postgres tables...")
	if err := gdb.WithContext(ctx).AutoMigrate(&ContactRecord{}, &AddressRecord{}); err != nil {
		serviceLog.Error("Auto migration failed for postgres tables", "error", err)
		return fmt.Errorf("migrate: %w", err)
	}
	serviceLog.Info("Postgres tables migrated")
	return nil
}
