package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	firmLoader   *dataloader.Loader[string, *models.Firm]
	userLoader   *dataloader.Loader[int, *models.User]
	clientLoader *dataloader.Loader[int, *models.Client]
	caseLoader   *dataloader.Loader[int, *models.Case]

	invoiceLoader        *dataloader.Loader[int, *models.Invoice]
	approvalByCaseLoader *dataloader.Loader[int, *models.CaseApproval]

	timeEntriesByCaseLoader    *dataloader.Loader[int, []*models.TimeEntry]
	billingHistoryByCaseLoader *dataloader.Loader[int, []*models.CaseBillingHistory]
}

func NewLoaders(conn *gorm.DB) *Loaders {
	firmReader := &firmReader{db: conn}
	userReader := &userReader{db: conn}
	clientReader := &clientReader{db: conn}
	caseReader := &caseReader{db: conn}
	invoiceReader := &invoiceReader{db: conn}
	approvalReader := &approvalReader{db: conn}
	timeEntryReader := &timeEntryReader{db: conn}
	billingHistoryReader := &billingHistoryReader{db: conn}

	return &Loaders{
		firmLoader:   dataloader.NewBatchedLoader(firmReader.getFirms, dataloader.WithWait[string, *models.Firm](time.Millisecond)),
		userLoader:   dataloader.NewBatchedLoader(userReader.getUsers, dataloader.WithWait[int, *models.User](time.Millisecond)),
		clientLoader: dataloader.NewBatchedLoader(clientReader.getClients, dataloader.WithWait[int, *models.Client](time.Millisecond)),
		caseLoader:   dataloader.NewBatchedLoader(caseReader.getCases, dataloader.WithWait[int, *models.Case](time.Millisecond)),

		invoiceLoader:        dataloader.NewBatchedLoader(invoiceReader.getInvoices, dataloader.WithWait[int, *models.Invoice](time.Millisecond)),
		approvalByCaseLoader: dataloader.NewBatchedLoader(approvalReader.getApprovalsByCase, dataloader.WithWait[int, *models.CaseApproval](time.Millisecond)),

		timeEntriesByCaseLoader:    dataloader.NewBatchedLoader(timeEntryReader.getTimeEntriesByCase, dataloader.WithWait[int, []*models.TimeEntry](time.Millisecond)),
		billingHistoryByCaseLoader: dataloader.NewBatchedLoader(billingHistoryReader.getBillingHistoryByCase, dataloader.WithWait[int, []*models.CaseBillingHistory](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns rows from db into dataloader results, one per requested key, in key order
func generateLoaderResults[K comparable, T any](results []*T, keys []K, keyOf func(*T) K) []*dataloader.Result[*T] {
	resultMap := make(map[K]*T, len(results))
	for _, result := range results {
		resultMap[keyOf(result)] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(keys))
	for _, key := range keys {
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: resultMap[key]})
	}
	return loaderResults
}

// each key maps to many rows
func generateLoaderArrayResults[K comparable, T any](results []*T, keys []K, refOf func(*T) K) []*dataloader.Result[[]*T] {
	resultMap := make(map[K][]*T)
	for _, result := range results {
		resultMap[refOf(result)] = append(resultMap[refOf(result)], result)
	}

	loaderResults := make([]*dataloader.Result[[]*T], 0, len(keys))
	for _, key := range keys {
		loaderResults = append(loaderResults, &dataloader.Result[[]*T]{Data: resultMap[key]})
	}
	return loaderResults
}
