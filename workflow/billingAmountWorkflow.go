package workflow

import (
	"context"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ChangeBillingAmount is the single entry point for mutating a case's fixed
// or retainer amount. The ledger row is written before the case field, in the
// same transaction, behind a row lock plus an advisory lock: no ledger entry,
// no change.
func ChangeBillingAmount(ctx context.Context, caseId int, newAmount decimal.Decimal, notes string) (*models.Case, error) {

	logger := config.GetLogger()

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("user id is required")
	}

	if newAmount.IsNegative() {
		return nil, utils.NewValidationError("billing amount cannot be negative")
	}

	db := config.GetDB()
	var result *models.Case
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCaseBillingLock(tx, firmId, caseId); err != nil {
			return err
		}
		defer ReleaseCaseBillingLock(tx, firmId, caseId)

		kase, err := models.GetCaseForUpdate(tx, caseId)
		if err != nil {
			return err
		}
		if !kase.Status.BillingConfigMutable() {
			return utils.NewValidationError("billing configuration of an archived case is frozen")
		}

		var eventType models.BillingEventType
		var previous decimal.Decimal
		switch kase.BillingType {
		case models.BillingTypeFixed:
			eventType = models.BillingEventFixedAmountChanged
			if kase.FixedAmount != nil {
				previous = *kase.FixedAmount
			}
		case models.BillingTypeRetainer:
			eventType = models.BillingEventRetainerAmountChanged
			if kase.RetainerAmount != nil {
				previous = *kase.RetainerAmount
			}
		default:
			return utils.NewValidationError("an hourly case has no billing amount to change")
		}

		event := models.CaseBillingHistory{
			EventType:      eventType,
			PreviousAmount: &previous,
			NewAmount:      &newAmount,
			Note:           notes,
			CreatedBy:      userId,
		}
		if err := models.RecordBillingEvent(tx, kase, &event); err != nil {
			return err
		}

		before := *kase
		column := "fixed_amount"
		if kase.BillingType == models.BillingTypeRetainer {
			column = "retainer_amount"
		}
		if err := tx.Model(kase).Update(column, newAmount).Error; err != nil {
			return err
		}
		if kase.BillingType == models.BillingTypeRetainer {
			kase.RetainerAmount = &newAmount
		} else {
			kase.FixedAmount = &newAmount
		}

		result = kase
		return models.SaveHistoryUpdate(tx, kase.ID, &before, kase, "Billing amount changed")
	})
	if err != nil {
		config.LogError(logger, "workflow", "ChangeBillingAmount", "transaction", caseId, err)
		return nil, classifyTxError(err)
	}
	return result, nil
}
