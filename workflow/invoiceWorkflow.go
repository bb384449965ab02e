package workflow

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"gorm.io/gorm"
)

// CreateInvoice issues an invoice against a case and records the
// InvoiceCreated ledger event in the same transaction. A fixed-fee case
// cannot be invoiced past its fixed amount across its open and paid invoices.
func CreateInvoice(ctx context.Context, input *models.NewInvoice) (*models.Invoice, error) {

	logger := config.GetLogger()

	firmId, userId, _, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !input.Amount.IsPositive() {
		return nil, utils.NewValidationError("invoice amount must be positive")
	}
	if err := utils.ValidateUnique[models.Invoice](ctx, firmId, "invoice_number", input.InvoiceNumber, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var result *models.Invoice
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireCaseBillingLock(tx, firmId, input.CaseId); err != nil {
			return err
		}
		defer ReleaseCaseBillingLock(tx, firmId, input.CaseId)

		kase, err := models.GetCaseForUpdate(tx, input.CaseId)
		if err != nil {
			return err
		}
		if kase.Status == models.CaseStatusArchived {
			return utils.NewValidationError("cannot invoice an archived case")
		}

		if kase.BillingType == models.BillingTypeFixed && kase.FixedAmount != nil {
			existing, err := models.GetInvoicesByCase2(tx, firmId, input.CaseId)
			if err != nil {
				return err
			}
			invoiced := input.Amount
			for _, inv := range existing {
				if inv.Status != models.InvoiceStatusCancelled {
					invoiced = invoiced.Add(inv.Amount)
				}
			}
			if invoiced.GreaterThan(*kase.FixedAmount) {
				return utils.NewValidationError("invoicing %s would exceed the fixed amount %s",
					invoiced, kase.FixedAmount)
			}
		}

		invoice := models.Invoice{
			FirmId:        firmId,
			CaseId:        input.CaseId,
			InvoiceNumber: input.InvoiceNumber,
			Amount:        input.Amount,
			Status:        models.InvoiceStatusOpen,
			IssuedAt:      time.Now(),
			Note:          input.Note,
			CreatedBy:     userId,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			if isDuplicateKeyErr(err) {
				return utils.NewValidationError("invoice number %s already exists", input.InvoiceNumber)
			}
			return err
		}

		event := models.CaseBillingHistory{
			EventType: models.BillingEventInvoiceCreated,
			Amount:    &invoice.Amount,
			InvoiceId: &invoice.ID,
			Note:      input.Note,
			CreatedBy: userId,
		}
		if err := models.RecordBillingEvent(tx, kase, &event); err != nil {
			return err
		}

		result = &invoice
		return models.SaveHistoryCreate(tx, invoice.ID, &invoice, "Invoice "+invoice.InvoiceNumber+" created")
	})
	if err != nil {
		config.LogError(logger, "workflow", "CreateInvoice", "transaction", input, err)
		return nil, classifyTxError(err)
	}
	return result, nil
}

func MarkInvoicePaid(ctx context.Context, invoiceId int) (*models.Invoice, error) {
	return transitionInvoice(ctx, invoiceId, models.BillingEventInvoicePaid, "")
}

func CancelInvoice(ctx context.Context, invoiceId int, note string) (*models.Invoice, error) {
	return transitionInvoice(ctx, invoiceId, models.BillingEventInvoiceCancelled, note)
}

func transitionInvoice(ctx context.Context, invoiceId int, eventType models.BillingEventType, note string) (*models.Invoice, error) {

	logger := config.GetLogger()

	firmId, userId, _, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var result *models.Invoice
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := models.GetInvoiceForUpdate(tx, invoiceId)
		if err != nil {
			return err
		}
		if invoice.FirmId != firmId {
			return utils.ErrorRecordNotFound
		}

		kase, err := models.GetCaseForUpdate(tx, invoice.CaseId)
		if err != nil {
			return err
		}

		before := *invoice
		now := time.Now()
		switch eventType {
		case models.BillingEventInvoicePaid:
			err = invoice.MarkPaid(now)
		case models.BillingEventInvoiceCancelled:
			err = invoice.Cancel(now)
		default:
			err = utils.NewValidationError("invalid invoice transition")
		}
		if err != nil {
			return err
		}

		event := models.CaseBillingHistory{
			EventType: eventType,
			Amount:    &invoice.Amount,
			InvoiceId: &invoice.ID,
			Note:      note,
			CreatedBy: userId,
		}
		if err := models.RecordBillingEvent(tx, kase, &event); err != nil {
			return err
		}

		if err := tx.Save(invoice).Error; err != nil {
			return err
		}

		result = invoice
		return models.SaveHistoryUpdate(tx, invoice.ID, &before, invoice, "Invoice "+string(eventType))
	})
	if err != nil {
		config.LogError(logger, "workflow", "transitionInvoice", "transaction", invoiceId, err)
		return nil, classifyTxError(err)
	}
	return result, nil
}
