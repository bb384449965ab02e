package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
)

// CaseProfitabilityRow is the firm-wide worked-value rollup: billable value
// at the persisted entry rates, per case. Fixed/retainer profitability math
// stays in the financial calculator; this report only aggregates the raw
// worked value for the dashboard list.
type CaseProfitabilityRow struct {
	CaseId         int              `json:"case_id"`
	CaseNumber     string           `json:"case_number"`
	BillingType    string           `json:"billing_type"`
	Status         string           `json:"status"`
	FixedAmount    *decimal.Decimal `json:"fixed_amount"`
	RetainerAmount *decimal.Decimal `json:"retainer_amount"`
	WorkedValue    decimal.Decimal  `json:"worked_value"`
	WorkedHours    decimal.Decimal  `json:"worked_hours"`
	EntryCount     int              `json:"entry_count"`
}

func GetCaseProfitabilityReport(ctx context.Context) ([]*CaseProfitabilityRow, error) {

	started := time.Now()
	defer logSlowReport(ctx, "case_profitability", started, nil)

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	cacheKey := fmt.Sprintf("Report:CaseProfitability:%s", firmId)
	if reportCacheEnabled() {
		var cached []*CaseProfitabilityRow
		if hit, err := cacheGet(cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	sql := `
SELECT
    cases.id AS case_id,
    cases.case_number,
    cases.billing_type,
    cases.status,
    cases.fixed_amount,
    cases.retainer_amount,
    COALESCE(te.worked_value, 0) AS worked_value,
    COALESCE(te.worked_hours, 0) AS worked_hours,
    COALESCE(te.entry_count, 0) AS entry_count
FROM
    cases
    LEFT JOIN (
        SELECT
            case_id,
            SUM(hours * rate) AS worked_value,
            SUM(hours) AS worked_hours,
            COUNT(id) AS entry_count
        FROM
            time_entries
        WHERE
            firm_id = ? AND billable = 1
        GROUP BY
            case_id
    ) AS te ON te.case_id = cases.id
WHERE
    cases.firm_id = ?
ORDER BY
    cases.created_at DESC`

	var records []*CaseProfitabilityRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, firmId, firmId).Scan(&records).Error; err != nil {
		return nil, err
	}

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, records, reportCacheTTL())
	}
	return records, nil
}
