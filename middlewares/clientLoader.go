package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/meridianlegal/practice_backend/models"
	"gorm.io/gorm"
)

type clientReader struct {
	db *gorm.DB
}

func (r *clientReader) getClients(ctx context.Context, ids []int) []*dataloader.Result[*models.Client] {
	var results []*models.Client
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Client](len(ids), err)
	}

	return generateLoaderResults(results, ids, (*models.Client).GetId)
}

func GetClient(ctx context.Context, id int) (*models.Client, error) {
	loaders := For(ctx)
	return loaders.clientLoader.Load(ctx, id)()
}
