package models

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var quarterHour = decimal.NewFromFloat(0.25)

// QuantizeHours rounds raw hours to the nearest quarter hour. Entries that
// quantize to zero or below are rejected rather than stored as free work.
func QuantizeHours(hours decimal.Decimal) (decimal.Decimal, error) {
	quantized := hours.Div(quarterHour).Round(0).Mul(quarterHour)
	if !quantized.IsPositive() {
		return decimal.Zero, utils.NewValidationError("hours must quantize to at least a quarter hour")
	}
	return quantized, nil
}

// TimeEntry stores the resolved rate at creation time. Later changes to the
// firm default card or the case override card never touch existing rows.
type TimeEntry struct {
	ID          int             `gorm:"primary_key" json:"id"`
	FirmId      string          `gorm:"index;not null" json:"firm_id" binding:"required"`
	CaseId      int             `gorm:"index;not null" json:"case_id" binding:"required"`
	UserId      int             `gorm:"index;not null" json:"user_id" binding:"required"`
	UserRole    UserRole        `gorm:"type:enum('Partner','Associate','Paralegal','BusinessOwner','Admin');not null" json:"user_role"`
	WorkDate    time.Time       `gorm:"type:date;index;not null" json:"work_date"`
	Hours       decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"hours"`
	Rate        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"rate"`
	Billable    *bool           `gorm:"not null;default:true" json:"billable"`
	Description string          `gorm:"size:500" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Amount is hours times the persisted rate; never recomputed from current
// rate cards.
func (t *TimeEntry) Amount() decimal.Decimal {
	return t.Hours.Mul(t.Rate)
}

type NewTimeEntry struct {
	CaseId      int             `json:"case_id" binding:"required"`
	UserId      int             `json:"user_id"`
	WorkDate    time.Time       `json:"work_date" binding:"required"`
	Hours       decimal.Decimal `json:"hours" binding:"required"`
	Billable    *bool           `json:"billable"`
	Description string          `json:"description"`
}

// billable time needs an approved, active case; the gate distinguishes
// not-yet-approved (CaseNotApprovedError, actionable by a partner) from
// on-hold/closed/archived (plain validation error)
func validateBillableGate(kase *Case, billable bool) error {
	if kase.Status == CaseStatusActive {
		return nil
	}
	if !billable && !config.StrictApprovalGate() {
		if kase.Status != CaseStatusArchived {
			return nil
		}
		return utils.NewValidationError("cannot log time against an archived case")
	}
	if kase.Status == CaseStatusPendingApproval {
		return utils.NewCaseNotApprovedError(kase.ID)
	}
	return utils.NewValidationError("cannot log billable time against a %s case", kase.Status)
}

// CreateTimeEntry resolves the effective rate for the biller's role and
// persists it alongside the entry, all inside one transaction so the gate
// check and the insert see the same case row.
func CreateTimeEntry(ctx context.Context, input *NewTimeEntry) (*TimeEntry, error) {

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	billerId := input.UserId
	if billerId == 0 {
		actorId, ok := utils.GetUserIdFromContext(ctx)
		if !ok {
			return nil, utils.NewValidationError("user id is required")
		}
		billerId = actorId
	}

	hours, err := QuantizeHours(input.Hours)
	if err != nil {
		return nil, err
	}

	billable := true
	if input.Billable != nil {
		billable = *input.Billable
	}

	db := config.GetDB()
	var entry TimeEntry
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kase, err := GetCaseForUpdate(tx, input.CaseId)
		if err != nil {
			return err
		}
		if err := validateBillableGate(kase, billable); err != nil {
			return err
		}

		var biller User
		if err := tx.First(&biller, billerId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if biller.FirmId != firmId {
			return utils.NewPermissionError("user does not belong to this firm")
		}

		firm, err := GetFirmById2(tx, firmId)
		if err != nil {
			return err
		}
		rate, err := ResolveRate(firm.DefaultRates, kase.CustomRates, biller.Role)
		if err != nil {
			return err
		}

		entry = TimeEntry{
			FirmId:      firmId,
			CaseId:      input.CaseId,
			UserId:      billerId,
			UserRole:    biller.Role,
			WorkDate:    input.WorkDate,
			Hours:       hours,
			Rate:        rate,
			Billable:    &billable,
			Description: input.Description,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func GetTimeEntry(ctx context.Context, id int) (*TimeEntry, error) {
	db := config.GetDB()
	var entry TimeEntry
	if err := db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func GetTimeEntriesByCase(ctx context.Context, caseId int, from *time.Time, to *time.Time) ([]*TimeEntry, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("firm_id = ? AND case_id = ?", firmId, caseId)
	if from != nil {
		dbCtx = dbCtx.Where("work_date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("work_date < ?", *to)
	}
	var results []*TimeEntry
	if err := dbCtx.Order("work_date ASC, id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getTimeEntriesByCase2 is the in-transaction variant used by the financial
// calculator.
func getTimeEntriesByCase2(tx *gorm.DB, firmId string, caseId int, from *time.Time, to *time.Time) ([]*TimeEntry, error) {
	dbCtx := tx.Where("firm_id = ? AND case_id = ?", firmId, caseId)
	if from != nil {
		dbCtx = dbCtx.Where("work_date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("work_date < ?", *to)
	}
	var results []*TimeEntry
	if err := dbCtx.Order("work_date ASC, id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
