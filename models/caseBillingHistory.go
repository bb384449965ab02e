package models

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CaseBillingHistory is the append-only billing ledger. Amount-change events
// carry a previous/new snapshot pair; the workflow writes the ledger row
// before mutating the case, in the same transaction, so the snapshot chain
// and the case row can never disagree.
type CaseBillingHistory struct {
	ID             int              `gorm:"primary_key" json:"id"`
	FirmId         string           `gorm:"index;not null" json:"firm_id" binding:"required"`
	CaseId         int              `gorm:"index;not null" json:"case_id" binding:"required"`
	EventType      BillingEventType `gorm:"type:enum('InvoiceCreated','InvoiceCancelled','InvoicePaid','FixedAmountChanged','RetainerAmountChanged');not null" json:"event_type"`
	Amount         *decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	PreviousAmount *decimal.Decimal `gorm:"type:decimal(15,2)" json:"previous_amount"`
	NewAmount      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"new_amount"`
	InvoiceId      *int             `gorm:"index" json:"invoice_id"`
	Note           string           `gorm:"size:500" json:"note"`
	CreatedBy      int              `json:"created_by"`
	CreatedAt      time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (h *CaseBillingHistory) IsAmountChange() bool {
	return h.EventType == BillingEventFixedAmountChanged || h.EventType == BillingEventRetainerAmountChanged
}

func (h *CaseBillingHistory) validate(billingType BillingType) error {
	if !h.EventType.AllowedForBillingType(billingType) {
		return utils.NewValidationError("event %s is not valid for a %s case", h.EventType, billingType)
	}
	if h.IsAmountChange() {
		if h.PreviousAmount == nil || h.NewAmount == nil {
			return utils.NewValidationError("amount-change event requires previous and new amounts")
		}
		if h.NewAmount.IsNegative() {
			return utils.NewValidationError("new amount cannot be negative")
		}
	} else {
		if h.InvoiceId == nil {
			return utils.NewValidationError("invoice event requires an invoice id")
		}
		if h.Amount == nil || !h.Amount.IsPositive() {
			return utils.NewValidationError("invoice event requires a positive amount")
		}
	}
	return nil
}

// RecordBillingEvent appends one ledger row inside the caller's transaction.
// The ledger is insert-only; nothing in this codebase updates or deletes rows.
func RecordBillingEvent(tx *gorm.DB, kase *Case, event *CaseBillingHistory) error {
	event.FirmId = kase.FirmId
	event.CaseId = kase.ID
	if err := event.validate(kase.BillingType); err != nil {
		return err
	}
	return tx.Create(event).Error
}

func GetBillingHistoryByCase(ctx context.Context, caseId int, since *time.Time, limit int, offset int) ([]*CaseBillingHistory, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("firm_id = ? AND case_id = ?", firmId, caseId).
		Order("created_at DESC, id DESC")
	if since != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *since)
	}
	if limit > 0 {
		dbCtx = dbCtx.Limit(limit).Offset(offset)
	}
	var results []*CaseBillingHistory
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// BillingFeedItem wraps a ledger row for display. ChainBroken marks a row
// whose previous-amount snapshot does not match the next-older row of the
// same event type; old data can contain such gaps and the feed flags them
// instead of failing.
type BillingFeedItem struct {
	*CaseBillingHistory
	ChainBroken bool `json:"chain_broken"`
}

// BuildBillingFeed takes rows ordered newest first and checks the snapshot
// chain per amount-change event type.
func BuildBillingFeed(rows []*CaseBillingHistory) []*BillingFeedItem {
	feed := make([]*BillingFeedItem, 0, len(rows))
	for i, row := range rows {
		item := &BillingFeedItem{CaseBillingHistory: row}
		if row.IsAmountChange() {
			for j := i + 1; j < len(rows); j++ {
				older := rows[j]
				if older.EventType != row.EventType {
					continue
				}
				if older.NewAmount == nil || row.PreviousAmount == nil ||
					!older.NewAmount.Equal(*row.PreviousAmount) {
					item.ChainBroken = true
				}
				break
			}
		}
		feed = append(feed, item)
	}
	return feed
}
