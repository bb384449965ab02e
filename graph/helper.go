package graph

import (
	"context"

	"github.com/meridianlegal/practice_backend/middlewares"
	"github.com/meridianlegal/practice_backend/models"
)

// CaseOverview is the dashboard shape: the case plus its firm, the people
// around it, its approval record, financial summary, time entries, the
// flagged billing feed and the invoices the feed references, assembled from
// batched loaders so a case list does not fan out into N queries per row.
type CaseOverview struct {
	Case        *models.Case              `json:"case"`
	Firm        *models.Firm              `json:"firm"`
	Client      *models.Client            `json:"client"`
	OpenedBy    *models.User              `json:"opened_by"`
	Approval    *models.CaseApproval      `json:"approval"`
	Financials  *models.CaseFinancials    `json:"financials"`
	TimeEntries []*models.TimeEntry       `json:"time_entries"`
	Feed        []*models.BillingFeedItem `json:"feed"`
	Invoices    []*models.Invoice         `json:"invoices"`
}

func GetCaseOverview(ctx context.Context, caseId int) (*CaseOverview, error) {
	kase, err := middlewares.GetCase(ctx, caseId)
	if err != nil {
		return nil, err
	}
	if kase == nil {
		return nil, nil
	}

	overview := CaseOverview{Case: kase}

	firm, err := middlewares.GetFirm(ctx, kase.FirmId)
	if err != nil {
		return nil, err
	}
	overview.Firm = firm

	if kase.ClientId > 0 {
		client, err := middlewares.GetClient(ctx, kase.ClientId)
		if err != nil {
			return nil, err
		}
		overview.Client = client
	}

	if kase.CreatedBy > 0 {
		openedBy, err := middlewares.GetUser(ctx, kase.CreatedBy)
		if err != nil {
			return nil, err
		}
		overview.OpenedBy = openedBy
	}

	approval, err := middlewares.GetApprovalByCase(ctx, caseId)
	if err != nil {
		return nil, err
	}
	overview.Approval = approval

	financials, err := models.ComputeCaseFinancialsById(ctx, caseId)
	if err != nil {
		return nil, err
	}
	overview.Financials = financials

	entries, err := middlewares.GetTimeEntriesByCase(ctx, caseId)
	if err != nil {
		return nil, err
	}
	overview.TimeEntries = entries

	ledger, err := middlewares.GetBillingHistoryByCase(ctx, caseId)
	if err != nil {
		return nil, err
	}
	overview.Feed = models.BuildBillingFeed(ledger)

	seen := make(map[int]bool)
	for _, row := range ledger {
		if row.InvoiceId == nil || seen[*row.InvoiceId] {
			continue
		}
		seen[*row.InvoiceId] = true
		invoice, err := middlewares.GetInvoice(ctx, *row.InvoiceId)
		if err != nil {
			return nil, err
		}
		if invoice != nil {
			overview.Invoices = append(overview.Invoices, invoice)
		}
	}

	return &overview, nil
}

func GetCaseOverviews(ctx context.Context, caseIds []int) ([]*CaseOverview, error) {
	overviews := make([]*CaseOverview, 0, len(caseIds))
	for _, id := range caseIds {
		overview, err := GetCaseOverview(ctx, id)
		if err != nil {
			return nil, err
		}
		if overview != nil {
			overviews = append(overviews, overview)
		}
	}
	return overviews, nil
}
