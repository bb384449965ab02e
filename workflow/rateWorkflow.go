package workflow

import (
	"context"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"gorm.io/gorm"
)

// UpdateCaseRates replaces the case's rate override card and appends one
// case_rate_history row per role whose override changed. Existing time
// entries keep the rate they were created with.
func UpdateCaseRates(ctx context.Context, caseId int, newCard models.RateCard) (*models.Case, error) {

	logger := config.GetLogger()

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("user id is required")
	}

	if newCard != nil {
		if err := newCard.ValidateOverrides(); err != nil {
			return nil, err
		}
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

		rows := models.DiffRateCards(firmId, caseId, userId, kase.CustomRates, newCard)
		for _, row := range rows {
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}

		before := *kase
		kase.CustomRates = newCard
		if err := tx.Model(kase).Update("custom_rates", newCard).Error; err != nil {
			return err
		}

		result = kase
		return models.SaveHistoryUpdate(tx, kase.ID, &before, kase, "Case rate overrides updated")
	})
	if err != nil {
		config.LogError(logger, "workflow", "UpdateCaseRates", "transaction", caseId, err)
		return nil, classifyTxError(err)
	}
	return result, nil
}
