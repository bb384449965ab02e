package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/meridianlegal/practice_backend/models"
	"gorm.io/gorm"
)

type invoiceReader struct {
	db *gorm.DB
}

func (r *invoiceReader) getInvoices(ctx context.Context, ids []int) []*dataloader.Result[*models.Invoice] {
	var results []*models.Invoice
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Invoice](len(ids), err)
	}

	return generateLoaderResults(results, ids, (*models.Invoice).GetId)
}

func GetInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	loaders := For(ctx)
	return loaders.invoiceLoader.Load(ctx, id)()
}
