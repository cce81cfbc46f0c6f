package db

import (
	"fmt"
	"log"

	"github.com/craftlink/marketplace-api/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	err := DB.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.BuilderProfile{},
		&models.SessionType{},
		&models.AvailabilityRule{},
		&models.AvailabilityException{},
		&models.Booking{},
		&models.WebhookEvent{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	// Partial unique index closing the double-booking window. Cancelled and
	// completed bookings must not keep their slot occupied, so the index
	// only covers live statuses.
	err = DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_builder_start_live
		ON bookings (builder_id, start_time)
		WHERE status IN ('pending', 'confirmed') AND deleted_at IS NULL
	`).Error
	if err != nil {
		log.Fatal("Failed to create booking exclusion index: ", err)
	}

	SeedRolesAndPermissions()

	fmt.Println("✅ Migrations applied successfully!")
}
