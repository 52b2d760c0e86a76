// internal/warehouse/db.go
package warehouse

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"datagen-service/internal/config"
	"datagen-service/pkg/models"
)

var db *gorm.DB

func InitDB(cfg *config.Config) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBSSLMode,
	)

	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect to warehouse DB: %v", err)
	}

	// Auto-migrate (safe in dev; use migrations in prod)
	err = db.AutoMigrate(&models.User{}, &models.Event{}, &models.GenerationRun{})
	if err != nil {
		log.Fatalf("❌ Failed to migrate warehouse tables: %v", err)
	}

	log.Println("✅ Warehouse DB connected & migrated")
}

func GetDB() *gorm.DB {
	return db
}
