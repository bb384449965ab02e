package models

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
)

// CaseRateHistory records one row per role whose case override changed: the
// override before (nil when the firm default applied) and after (nil when the
// override was removed). Append-only.
type CaseRateHistory struct {
	ID        int              `gorm:"primary_key" json:"id"`
	FirmId    string           `gorm:"index;not null" json:"firm_id" binding:"required"`
	CaseId    int              `gorm:"index;not null" json:"case_id" binding:"required"`
	RateType  RateType         `gorm:"type:enum('partner','associate','paralegal');not null" json:"rate_type"`
	OldRate   *decimal.Decimal `gorm:"type:decimal(15,2)" json:"old_rate"`
	NewRate   *decimal.Decimal `gorm:"type:decimal(15,2)" json:"new_rate"`
	ChangedBy int              `gorm:"not null" json:"changed_by"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func GetRateHistoryByCase(ctx context.Context, caseId int) ([]*CaseRateHistory, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	db := config.GetDB()
	var results []*CaseRateHistory
	err := db.WithContext(ctx).
		Where("firm_id = ? AND case_id = ?", firmId, caseId).
		Order("created_at DESC, id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DiffRateCards turns an old/new override pair into history rows, one per
// role whose effective override changed.
func DiffRateCards(firmId string, caseId int, changedBy int, oldCard RateCard, newCard RateCard) []*CaseRateHistory {
	var rows []*CaseRateHistory
	for _, role := range BillerRoles() {
		rateType, _ := RateTypeForRole(role)

		var oldRate, newRate *decimal.Decimal
		if oldCard != nil {
			if r, ok := oldCard[role]; ok {
				rc := r
				oldRate = &rc
			}
		}
		if newCard != nil {
			if r, ok := newCard[role]; ok {
				rc := r
				newRate = &rc
			}
		}

		if oldRate == nil && newRate == nil {
			continue
		}
		if oldRate != nil && newRate != nil && oldRate.Equal(*newRate) {
			continue
		}

		rows = append(rows, &CaseRateHistory{
			FirmId:    firmId,
			CaseId:    caseId,
			RateType:  rateType,
			OldRate:   oldRate,
			NewRate:   newRate,
			ChangedBy: changedBy,
		})
	}
	return rows
}
