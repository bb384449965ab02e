package models

import (
	"gorm.io/gorm"
)

func MigrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&Firm{},
		&User{},
		&Client{},
		&Case{},
		&TimeEntry{},
		&CaseRateHistory{},
		&CaseApproval{},
		&CaseBillingHistory{},
		&Invoice{},
		&History{},
	)
}
