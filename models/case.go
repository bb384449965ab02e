package models

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Case carries the billing configuration as a tagged variant on BillingType:
// Hourly has no amount fields, Fixed carries FixedAmount, Retainer carries
// the four retainer fields. validateBillingFields enforces the field-set
// consistency before any write.
type Case struct {
	ID         int        `gorm:"primary_key" json:"id"`
	FirmId     string     `gorm:"index;not null" json:"firm_id" binding:"required"`
	ClientId   int        `gorm:"index" json:"client_id"`
	CaseNumber string     `gorm:"size:100;index;not null" json:"case_number" binding:"required"`
	Title      string     `gorm:"size:255" json:"title"`
	Status     CaseStatus `gorm:"type:enum('PendingApproval','Active','OnHold','Closed','Archived');not null;default:'PendingApproval'" json:"status"`

	BillingType BillingType `gorm:"type:enum('Hourly','Fixed','Retainer');not null" json:"billing_type"`
	CustomRates RateCard    `gorm:"type:json" json:"custom_rates"`

	FixedAmount *decimal.Decimal `gorm:"type:decimal(15,2)" json:"fixed_amount"`

	RetainerAmount    *decimal.Decimal `gorm:"type:decimal(15,2)" json:"retainer_amount"`
	RetainerPeriod    *RetainerPeriod  `gorm:"type:enum('Monthly','Quarterly','Annually')" json:"retainer_period"`
	RetainerAutoRenew *bool            `json:"retainer_auto_renew"`
	RetainerRollover  *bool            `json:"retainer_rollover"`
	RetainerStartDate *time.Time       `json:"retainer_start_date"`

	CreatedBy int       `gorm:"index" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCase struct {
	ClientId   int    `json:"client_id"`
	CaseNumber string `json:"case_number" binding:"required"`
	Title      string `json:"title"`

	BillingType       BillingType      `json:"billing_type" binding:"required"`
	CustomRates       RateCard         `json:"custom_rates"`
	FixedAmount       *decimal.Decimal `json:"fixed_amount"`
	RetainerAmount    *decimal.Decimal `json:"retainer_amount"`
	RetainerPeriod    *RetainerPeriod  `json:"retainer_period"`
	RetainerAutoRenew *bool            `json:"retainer_auto_renew"`
	RetainerRollover  *bool            `json:"retainer_rollover"`
	RetainerStartDate *time.Time       `json:"retainer_start_date"`
}

// BillingConfigPatch updates the non-amount retainer knobs. Amount changes go
// through workflow.ChangeBillingAmount so the ledger row is written first;
// rate overrides go through workflow.UpdateCaseRates for the same reason.
type BillingConfigPatch struct {
	RetainerPeriod    *RetainerPeriod `json:"retainer_period"`
	RetainerAutoRenew *bool           `json:"retainer_auto_renew"`
	RetainerRollover  *bool           `json:"retainer_rollover"`
}

// exactly one of {fixedAmount present, retainerAmount present, neither} must
// be consistent with billingType; a mismatch is a validation error, never a
// silent default
func validateBillingFields(billingType BillingType, fixedAmount *decimal.Decimal,
	retainerAmount *decimal.Decimal, retainerPeriod *RetainerPeriod) error {

	switch billingType {
	case BillingTypeHourly:
		if fixedAmount != nil {
			return utils.NewValidationError("hourly case cannot carry a fixed amount")
		}
		if retainerAmount != nil || retainerPeriod != nil {
			return utils.NewValidationError("hourly case cannot carry retainer fields")
		}
	case BillingTypeFixed:
		if fixedAmount == nil {
			return utils.NewValidationError("fixed case requires a fixed amount")
		}
		if !fixedAmount.IsPositive() {
			return utils.NewValidationError("fixed amount must be positive")
		}
		if retainerAmount != nil || retainerPeriod != nil {
			return utils.NewValidationError("fixed case cannot carry retainer fields")
		}
	case BillingTypeRetainer:
		if retainerAmount == nil {
			return utils.NewValidationError("retainer case requires a retainer amount")
		}
		if !retainerAmount.IsPositive() {
			return utils.NewValidationError("retainer amount must be positive")
		}
		if retainerPeriod == nil || retainerPeriod.Months() == 0 {
			return utils.NewValidationError("retainer case requires a valid retainer period")
		}
		if fixedAmount != nil {
			return utils.NewValidationError("retainer case cannot carry a fixed amount")
		}
	default:
		return utils.NewValidationError("invalid billing type")
	}
	return nil
}

func (input *NewCase) validate(ctx context.Context, firmId string) error {
	if err := validateBillingFields(input.BillingType, input.FixedAmount, input.RetainerAmount, input.RetainerPeriod); err != nil {
		return err
	}
	if input.CustomRates != nil {
		if err := input.CustomRates.ValidateOverrides(); err != nil {
			return err
		}
	}
	if input.ClientId > 0 {
		if err := utils.ValidateResourceId[Client](ctx, firmId, input.ClientId); err != nil {
			return utils.NewValidationError("client not found")
		}
	}
	if err := utils.ValidateUnique[Case](ctx, firmId, "case_number", input.CaseNumber, 0); err != nil {
		return err
	}
	return nil
}

// CreateCase opens a new case. Partners and owners open Active cases
// directly; cases opened by associates or paralegals start in PendingApproval
// with an approval record created in the same transaction.
func CreateCase(ctx context.Context, input *NewCase) (*Case, error) {

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("user id is required")
	}
	roleStr, _ := utils.GetUserRoleFromContext(ctx)
	role := UserRole(roleStr)

	if err := input.validate(ctx, firmId); err != nil {
		return nil, err
	}

	status := CaseStatusPendingApproval
	if role.CreatesActiveCases() {
		status = CaseStatusActive
	}

	retainerStartDate := input.RetainerStartDate
	if input.BillingType == BillingTypeRetainer && retainerStartDate == nil {
		now := time.Now().UTC().Truncate(24 * time.Hour)
		retainerStartDate = &now
	}

	kase := Case{
		FirmId:            firmId,
		ClientId:          input.ClientId,
		CaseNumber:        input.CaseNumber,
		Title:             input.Title,
		Status:            status,
		BillingType:       input.BillingType,
		CustomRates:       input.CustomRates,
		FixedAmount:       input.FixedAmount,
		RetainerAmount:    input.RetainerAmount,
		RetainerPeriod:    input.RetainerPeriod,
		RetainerAutoRenew: input.RetainerAutoRenew,
		RetainerRollover:  input.RetainerRollover,
		RetainerStartDate: retainerStartDate,
		CreatedBy:         userId,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&kase).Error; err != nil {
			return err
		}
		if status == CaseStatusPendingApproval {
			approval := CaseApproval{
				FirmId:        firmId,
				CaseId:        kase.ID,
				SubmittedBy:   userId,
				SubmittedAt:   time.Now(),
				Status:        ApprovalStatusPending,
				RevisionCount: 0,
			}
			if err := tx.Create(&approval).Error; err != nil {
				return err
			}
		}
		return SaveHistoryCreate(tx, kase.ID, &kase, "Case "+kase.CaseNumber+" created")
	})
	if err != nil {
		return nil, err
	}
	return &kase, nil
}

func GetCase(ctx context.Context, id int) (*Case, error) {
	db := config.GetDB()
	var result Case
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// GetCaseForUpdate takes a row lock so two concurrent billing mutations on
// the same case cannot interleave (lost-update prevention, see the ledger
// previous-amount invariant).
func GetCaseForUpdate(tx *gorm.DB, id int) (*Case, error) {
	var result Case
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&result, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

func GetCases(ctx context.Context, status *CaseStatus, billingType *BillingType, limit int, offset int) ([]*Case, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("firm_id = ?", firmId)
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if billingType != nil {
		dbCtx = dbCtx.Where("billing_type = ?", *billingType)
	}
	if limit > 0 {
		dbCtx = dbCtx.Limit(limit).Offset(offset)
	}
	var results []*Case
	if err := dbCtx.Order("created_at DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateBillingConfig applies the non-amount knobs of the billing
// configuration. Rejected once the case is archived.
func UpdateBillingConfig(ctx context.Context, caseId int, patch *BillingConfigPatch) (*Case, error) {

	db := config.GetDB()

	var result *Case
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kase, err := GetCaseForUpdate(tx, caseId)
		if err != nil {
			return err
		}
		if !kase.Status.BillingConfigMutable() {
			return utils.NewValidationError("billing configuration of an archived case is frozen")
		}
		if kase.BillingType != BillingTypeRetainer {
			if patch.RetainerPeriod != nil || patch.RetainerAutoRenew != nil || patch.RetainerRollover != nil {
				return utils.NewValidationError("retainer fields only apply to retainer cases")
			}
			result = kase
			return nil
		}

		before := *kase
		if patch.RetainerPeriod != nil {
			if patch.RetainerPeriod.Months() == 0 {
				return utils.NewValidationError("invalid retainer period")
			}
			kase.RetainerPeriod = patch.RetainerPeriod
		}
		if patch.RetainerAutoRenew != nil {
			kase.RetainerAutoRenew = patch.RetainerAutoRenew
		}
		if patch.RetainerRollover != nil {
			kase.RetainerRollover = patch.RetainerRollover
		}

		if err := tx.Save(kase).Error; err != nil {
			return err
		}
		result = kase
		return SaveHistoryUpdate(tx, kase.ID, &before, kase, "Billing configuration updated")
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// legal status flow outside the approval machine; approval owns the
// PendingApproval -> Active transition
func caseStatusTransitionAllowed(from, to CaseStatus) bool {
	switch from {
	case CaseStatusActive:
		return to == CaseStatusOnHold || to == CaseStatusClosed
	case CaseStatusOnHold:
		return to == CaseStatusActive || to == CaseStatusClosed
	case CaseStatusClosed:
		return to == CaseStatusArchived
	}
	return false
}

func UpdateCaseStatus(ctx context.Context, caseId int, newStatus CaseStatus) (*Case, error) {

	db := config.GetDB()
	var result *Case
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kase, err := GetCaseForUpdate(tx, caseId)
		if err != nil {
			return err
		}
		if !caseStatusTransitionAllowed(kase.Status, newStatus) {
			return utils.NewValidationError("cannot move case from %s to %s", kase.Status, newStatus)
		}
		before := *kase
		kase.Status = newStatus
		if err := tx.Model(kase).Update("status", newStatus).Error; err != nil {
			return err
		}
		result = kase
		return SaveHistoryUpdate(tx, kase.ID, &before, kase, "Case status changed to "+string(newStatus))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ArchiveCase freezes the billing configuration permanently.
func ArchiveCase(ctx context.Context, caseId int) (*Case, error) {
	return UpdateCaseStatus(ctx, caseId, CaseStatusArchived)
}
