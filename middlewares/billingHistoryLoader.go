package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/meridianlegal/practice_backend/models"
	"gorm.io/gorm"
)

type billingHistoryReader struct {
	db *gorm.DB
}

func (r *billingHistoryReader) getBillingHistoryByCase(ctx context.Context, caseIds []int) []*dataloader.Result[[]*models.CaseBillingHistory] {
	var results []*models.CaseBillingHistory
	err := r.db.WithContext(ctx).Where("case_id IN ?", caseIds).
		Order("created_at DESC, id DESC").Find(&results).Error
	if err != nil {
		return handleError[[]*models.CaseBillingHistory](len(caseIds), err)
	}

	return generateLoaderArrayResults(results, caseIds, func(h *models.CaseBillingHistory) int { return h.CaseId })
}

func GetBillingHistoryByCase(ctx context.Context, caseId int) ([]*models.CaseBillingHistory, error) {
	loaders := For(ctx)
	return loaders.billingHistoryByCaseLoader.Load(ctx, caseId)()
}
