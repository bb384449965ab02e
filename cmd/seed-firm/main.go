// seed-firm creates a development firm with a complete default rate card and
// one user per role, so a fresh database is usable immediately.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-firm
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	firmName     = "Meridian & Partners"
	seedPassword = "ChangeMe!2024"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := models.MigrateDatabase(db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Seed")
	ctx = utils.SetSkipFirmScopeInContext(ctx, true)

	var existing models.Firm
	err := db.WithContext(ctx).Where("name = ?", firmName).First(&existing).Error
	if err == nil {
		fmt.Printf("Firm %q already exists (id=%s); nothing to do\n", firmName, existing.ID)
		return
	}
	if err != gorm.ErrRecordNotFound {
		fmt.Fprintf(os.Stderr, "failed to lookup firm: %v\n", err)
		os.Exit(1)
	}

	firm, err := models.CreateFirm(ctx, &models.NewFirm{
		Name:        firmName,
		CountryCode: "DE",
		Timezone:    "Europe/Berlin",
		DefaultRates: models.RateCard{
			models.UserRolePartner:   decimal.NewFromInt(450),
			models.UserRoleAssociate: decimal.NewFromInt(300),
			models.UserRoleParalegal: decimal.NewFromInt(150),
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create firm: %v\n", err)
		os.Exit(1)
	}

	seedUsers := []models.NewUser{
		{FirmId: firm.ID, Username: "partner", Name: "Seed Partner", Password: seedPassword, Role: models.UserRolePartner},
		{FirmId: firm.ID, Username: "associate", Name: "Seed Associate", Password: seedPassword, Role: models.UserRoleAssociate},
		{FirmId: firm.ID, Username: "paralegal", Name: "Seed Paralegal", Password: seedPassword, Role: models.UserRoleParalegal},
		{FirmId: firm.ID, Username: "owner", Name: "Seed Owner", Password: seedPassword, Role: models.UserRoleBusinessOwner},
	}
	for i := range seedUsers {
		if _, err := models.CreateUser(ctx, &seedUsers[i]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create user %s: %v\n", seedUsers[i].Username, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Created firm %q (id=%s) with %d users\n", firmName, firm.ID, len(seedUsers))
}
