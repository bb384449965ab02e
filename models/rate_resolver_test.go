package models_test

import (
	"testing"

	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
)

func defaultRates() models.RateCard {
	return models.RateCard{
		models.UserRolePartner:   decimal.NewFromInt(450),
		models.UserRoleAssociate: decimal.NewFromInt(300),
		models.UserRoleParalegal: decimal.NewFromInt(150),
	}
}

func TestResolveRate_FirmDefaultWhenNoOverride(t *testing.T) {
	for _, role := range models.BillerRoles() {
		rate, err := models.ResolveRate(defaultRates(), nil, role)
		if err != nil {
			t.Fatalf("ResolveRate(%s) error: %v", role, err)
		}
		if !rate.Equal(defaultRates()[role]) {
			t.Fatalf("ResolveRate(%s) expected %s, got %s", role, defaultRates()[role], rate)
		}
	}
}

func TestResolveRate_OverrideWinsRegardlessOfDefaults(t *testing.T) {
	overrides := models.RateCard{
		models.UserRoleAssociate: decimal.NewFromInt(275),
	}

	rate, err := models.ResolveRate(defaultRates(), overrides, models.UserRoleAssociate)
	if err != nil {
		t.Fatalf("ResolveRate error: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(275)) {
		t.Fatalf("expected override 275, got %s", rate)
	}

	// roles without an override still fall back to the firm default
	rate, err = models.ResolveRate(defaultRates(), overrides, models.UserRolePartner)
	if err != nil {
		t.Fatalf("ResolveRate error: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("expected firm default 450, got %s", rate)
	}
}

func TestResolveRate_MissingFirmDefaultIsConfigurationError(t *testing.T) {
	incomplete := models.RateCard{
		models.UserRolePartner: decimal.NewFromInt(450),
	}
	_, err := models.ResolveRate(incomplete, nil, models.UserRoleParalegal)
	if !utils.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestResolveRate_NonBillerIsValidationError(t *testing.T) {
	_, err := models.ResolveRate(defaultRates(), nil, models.UserRoleBusinessOwner)
	if !utils.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRateCard_ValidateComplete(t *testing.T) {
	if err := defaultRates().ValidateComplete(); err != nil {
		t.Fatalf("complete card rejected: %v", err)
	}

	missing := models.RateCard{
		models.UserRolePartner:   decimal.NewFromInt(450),
		models.UserRoleAssociate: decimal.NewFromInt(300),
	}
	if err := missing.ValidateComplete(); !utils.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError for missing paralegal rate, got %v", err)
	}

	zero := defaultRates()
	zero[models.UserRolePartner] = decimal.Zero
	if err := zero.ValidateComplete(); !utils.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError for zero rate, got %v", err)
	}
}

func TestRateCard_ValidateOverrides(t *testing.T) {
	ok := models.RateCard{models.UserRoleParalegal: decimal.NewFromInt(175)}
	if err := ok.ValidateOverrides(); err != nil {
		t.Fatalf("partial override card rejected: %v", err)
	}

	nonBiller := models.RateCard{models.UserRoleBusinessOwner: decimal.NewFromInt(500)}
	if err := nonBiller.ValidateOverrides(); !utils.IsValidationError(err) {
		t.Fatalf("expected ValidationError for non-biller key, got %v", err)
	}

	negative := models.RateCard{models.UserRolePartner: decimal.NewFromInt(-1)}
	if err := negative.ValidateOverrides(); !utils.IsValidationError(err) {
		t.Fatalf("expected ValidationError for negative rate, got %v", err)
	}
}
