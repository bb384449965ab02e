package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/meridianlegal/practice_backend/models"
	"gorm.io/gorm"
)

type firmReader struct {
	db *gorm.DB
}

func (r *firmReader) getFirms(ctx context.Context, ids []string) []*dataloader.Result[*models.Firm] {
	var results []*models.Firm
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Firm](len(ids), err)
	}

	return generateLoaderResults(results, ids, func(f *models.Firm) string { return f.ID })
}

func GetFirm(ctx context.Context, id string) (*models.Firm, error) {
	loaders := For(ctx)
	return loaders.firmLoader.Load(ctx, id)()
}
