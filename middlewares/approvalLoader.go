package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/meridianlegal/practice_backend/models"
	"gorm.io/gorm"
)

type approvalReader struct {
	db *gorm.DB
}

// keyed by case id, one approval row per case
func (r *approvalReader) getApprovalsByCase(ctx context.Context, caseIds []int) []*dataloader.Result[*models.CaseApproval] {
	var results []*models.CaseApproval
	err := r.db.WithContext(ctx).Where("case_id IN ?", caseIds).Find(&results).Error
	if err != nil {
		return handleError[*models.CaseApproval](len(caseIds), err)
	}

	return generateLoaderResults(results, caseIds, func(a *models.CaseApproval) int { return a.CaseId })
}

func GetApprovalByCase(ctx context.Context, caseId int) (*models.CaseApproval, error) {
	loaders := For(ctx)
	return loaders.approvalByCaseLoader.Load(ctx, caseId)()
}
