package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/meridianlegal/practice_backend/models"
	"gorm.io/gorm"
)

type timeEntryReader struct {
	db *gorm.DB
}

func (r *timeEntryReader) getTimeEntriesByCase(ctx context.Context, caseIds []int) []*dataloader.Result[[]*models.TimeEntry] {
	var results []*models.TimeEntry
	err := r.db.WithContext(ctx).Where("case_id IN ?", caseIds).
		Order("work_date ASC, id ASC").Find(&results).Error
	if err != nil {
		return handleError[[]*models.TimeEntry](len(caseIds), err)
	}

	return generateLoaderArrayResults(results, caseIds, func(t *models.TimeEntry) int { return t.CaseId })
}

func GetTimeEntriesByCase(ctx context.Context, caseId int) ([]*models.TimeEntry, error) {
	loaders := For(ctx)
	return loaders.timeEntriesByCaseLoader.Load(ctx, caseId)()
}
