package reports

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type BillingLedgerRow struct {
	CaseNumber     string           `json:"case_number"`
	CaseTitle      string           `json:"case_title"`
	EventType      string           `json:"event_type"`
	Amount         *decimal.Decimal `json:"amount"`
	PreviousAmount *decimal.Decimal `json:"previous_amount"`
	NewAmount      *decimal.Decimal `json:"new_amount"`
	InvoiceNumber  *string          `json:"invoice_number"`
	Note           string           `json:"note"`
	CreatedByName  *string          `json:"created_by_name"`
	CreatedAt      time.Time        `json:"created_at"`
}

func GetBillingLedgerReport(ctx context.Context, from *time.Time, to *time.Time) ([]*BillingLedgerRow, error) {

	started := time.Now()
	defer logSlowReport(ctx, "billing_ledger", started, nil)

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	cacheKey := fmt.Sprintf("Report:BillingLedger:%s", firmId)
	if reportCacheEnabled() && from == nil && to == nil {
		var cached []*BillingLedgerRow
		if hit, err := cacheGet(cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	sql := `
SELECT
    cases.case_number,
    cases.title AS case_title,
    cbh.event_type,
    cbh.amount,
    cbh.previous_amount,
    cbh.new_amount,
    invoices.invoice_number,
    cbh.note,
    users.name AS created_by_name,
    cbh.created_at
FROM
    case_billing_histories AS cbh
    JOIN cases ON cases.id = cbh.case_id
    LEFT JOIN invoices ON invoices.id = cbh.invoice_id
    LEFT JOIN users ON users.id = cbh.created_by
WHERE
    cbh.firm_id = ?`

	args := []interface{}{firmId}
	if from != nil {
		sql += " AND cbh.created_at >= ?"
		args = append(args, *from)
	}
	if to != nil {
		sql += " AND cbh.created_at < ?"
		args = append(args, *to)
	}
	sql += " ORDER BY cbh.created_at DESC, cbh.id DESC"

	var records []*BillingLedgerRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, args...).Scan(&records).Error; err != nil {
		return nil, err
	}

	if reportCacheEnabled() && from == nil && to == nil {
		_ = cacheSet(cacheKey, records, reportCacheTTL())
	}
	return records, nil
}

// ExportBillingLedgerExcel streams the ledger report as an XLSX workbook.
func ExportBillingLedgerExcel(ctx context.Context, w http.ResponseWriter) error {

	data, err := GetBillingLedgerReport(ctx, nil, nil)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return err
	}

	// Add headers
	f.SetCellValue("Sheet1", "A1", "CaseNumber")
	f.SetCellValue("Sheet1", "B1", "CaseTitle")
	f.SetCellValue("Sheet1", "C1", "EventType")
	f.SetCellValue("Sheet1", "D1", "Amount")
	f.SetCellValue("Sheet1", "E1", "PreviousAmount")
	f.SetCellValue("Sheet1", "F1", "NewAmount")
	f.SetCellValue("Sheet1", "G1", "InvoiceNumber")
	f.SetCellValue("Sheet1", "H1", "Note")
	f.SetCellValue("Sheet1", "I1", "CreatedBy")
	f.SetCellValue("Sheet1", "J1", "CreatedAt")

	// Add data
	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue("Sheet1", "A"+row, d.CaseNumber)
		f.SetCellValue("Sheet1", "B"+row, d.CaseTitle)
		f.SetCellValue("Sheet1", "C"+row, d.EventType)
		if d.Amount != nil {
			f.SetCellValue("Sheet1", "D"+row, d.Amount.String())
		}
		if d.PreviousAmount != nil {
			f.SetCellValue("Sheet1", "E"+row, d.PreviousAmount.String())
		}
		if d.NewAmount != nil {
			f.SetCellValue("Sheet1", "F"+row, d.NewAmount.String())
		}
		f.SetCellValue("Sheet1", "G"+row, utils.DereferencePtr(d.InvoiceNumber, ""))
		f.SetCellValue("Sheet1", "H"+row, d.Note)
		f.SetCellValue("Sheet1", "I"+row, utils.DereferencePtr(d.CreatedByName, ""))
		f.SetCellValue("Sheet1", "J"+row, d.CreatedAt.Format(time.RFC3339))
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=billing-ledger.xlsx")
	return f.Write(w)
}
