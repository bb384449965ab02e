package models

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Invoice struct {
	ID            int             `gorm:"primary_key" json:"id"`
	FirmId        string          `gorm:"index;not null" json:"firm_id" binding:"required"`
	CaseId        int             `gorm:"index;not null" json:"case_id" binding:"required"`
	InvoiceNumber string          `gorm:"size:100;index;not null" json:"invoice_number" binding:"required"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status        InvoiceStatus   `gorm:"type:enum('Open','Paid','Cancelled');not null;default:'Open'" json:"status"`
	IssuedAt      time.Time       `gorm:"not null" json:"issued_at"`
	PaidAt        *time.Time      `json:"paid_at"`
	CancelledAt   *time.Time      `json:"cancelled_at"`
	Note          string          `gorm:"size:500" json:"note"`
	CreatedBy     int             `json:"created_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoice struct {
	CaseId        int             `json:"case_id" binding:"required"`
	InvoiceNumber string          `json:"invoice_number" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Note          string          `json:"note"`
}

// MarkPaid moves Open -> Paid. Cancelled invoices stay cancelled.
func (inv *Invoice) MarkPaid(now time.Time) error {
	if inv.Status != InvoiceStatusOpen {
		return utils.NewValidationError("invoice is %s, only open invoices can be paid", inv.Status)
	}
	inv.Status = InvoiceStatusPaid
	inv.PaidAt = &now
	return nil
}

// Cancel moves Open -> Cancelled. Paid invoices cannot be cancelled; a credit
// note is a separate business process.
func (inv *Invoice) Cancel(now time.Time) error {
	if inv.Status != InvoiceStatusOpen {
		return utils.NewValidationError("invoice is %s, only open invoices can be cancelled", inv.Status)
	}
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	return nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	db := config.GetDB()
	var inv Invoice
	if err := db.WithContext(ctx).First(&inv, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func GetInvoiceForUpdate(tx *gorm.DB, id int) (*Invoice, error) {
	var inv Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func GetInvoicesByCase(ctx context.Context, caseId int) ([]*Invoice, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	db := config.GetDB()
	var results []*Invoice
	err := db.WithContext(ctx).
		Where("firm_id = ? AND case_id = ?", firmId, caseId).
		Order("issued_at DESC, id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetInvoicesByCase2 is the in-transaction variant used by the invoice
// workflow for fixed-fee over-billing checks.
func GetInvoicesByCase2(tx *gorm.DB, firmId string, caseId int) ([]*Invoice, error) {
	var results []*Invoice
	err := tx.Where("firm_id = ? AND case_id = ?", firmId, caseId).
		Order("issued_at ASC, id ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
