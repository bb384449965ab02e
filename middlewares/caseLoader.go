package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/meridianlegal/practice_backend/models"
	"gorm.io/gorm"
)

type caseReader struct {
	db *gorm.DB
}

func (r *caseReader) getCases(ctx context.Context, ids []int) []*dataloader.Result[*models.Case] {
	var results []*models.Case
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Case](len(ids), err)
	}

	return generateLoaderResults(results, ids, (*models.Case).GetId)
}

func GetCase(ctx context.Context, id int) (*models.Case, error) {
	loaders := For(ctx)
	return loaders.caseLoader.Load(ctx, id)()
}

func GetCases(ctx context.Context, ids []int) ([]*models.Case, []error) {
	loaders := For(ctx)
	return loaders.caseLoader.LoadMany(ctx, ids)()
}
