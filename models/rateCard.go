package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
)

// RateCard maps a biller role to an hourly rate. Stored as a JSON column.
// A firm's default card must be complete; a case's override card is partial
// by design.
type RateCard map[UserRole]decimal.Decimal

func (rc RateCard) Value() (driver.Value, error) {
	if rc == nil {
		return nil, nil
	}
	b, err := json.Marshal(rc)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (rc *RateCard) Scan(value interface{}) error {
	if value == nil {
		*rc = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into RateCard", value)
	}
	if len(b) == 0 {
		*rc = nil
		return nil
	}
	return json.Unmarshal(b, rc)
}

func (RateCard) GormDataType() string {
	return "json"
}

// ValidateComplete checks a firm-level default card: every biller role must
// carry a positive rate. A hole here is an administrator problem, never a
// silent zero.
func (rc RateCard) ValidateComplete() error {
	for _, role := range BillerRoles() {
		rate, ok := rc[role]
		if !ok {
			return utils.NewConfigurationError("firm default rate missing for role %s", role)
		}
		if !rate.IsPositive() {
			return utils.NewConfigurationError("firm default rate for role %s must be positive", role)
		}
	}
	return nil
}

// ValidateOverrides checks a case-level card: only biller roles are allowed
// as keys and every present rate must be positive. Missing roles are fine.
func (rc RateCard) ValidateOverrides() error {
	for role, rate := range rc {
		if !role.IsBiller() {
			return utils.NewValidationError("rate override for non-biller role %s", role)
		}
		if !rate.IsPositive() {
			return utils.NewValidationError("rate override for role %s must be positive", role)
		}
	}
	return nil
}

// ResolveRate returns the effective hourly rate for a biller role: the case
// override when one exists, the firm default otherwise. The result is
// persisted into the time entry at creation; later rate changes never touch
// existing entries.
func ResolveRate(firmDefaults RateCard, caseCustomRates RateCard, role UserRole) (decimal.Decimal, error) {
	if !role.IsBiller() {
		return decimal.Zero, utils.NewValidationError("role %s cannot bill time", role)
	}
	if caseCustomRates != nil {
		if rate, ok := caseCustomRates[role]; ok {
			return rate, nil
		}
	}
	if rate, ok := firmDefaults[role]; ok {
		return rate, nil
	}
	return decimal.Zero, utils.NewConfigurationError("no default rate configured for role %s", role)
}
