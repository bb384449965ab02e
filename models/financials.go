package models

import (
	"context"
	"sort"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CaseFinancials is the read-only financial summary of one case. Billed and
// projected values share the same currency unit (euros, two decimal places);
// the subtraction in Profitability is only ever unit-consistent.
type CaseFinancials struct {
	CaseId             int              `json:"case_id"`
	BillingType        BillingType      `json:"billing_type"`
	BilledValue        decimal.Decimal  `json:"billed_value"`
	ProjectedValue     decimal.Decimal  `json:"projected_value"`
	Profitability      *decimal.Decimal `json:"profitability"`
	BillableEntryCount int              `json:"billable_entry_count"`
	// InsufficientData marks a Fixed/Retainer case with no billable entries:
	// the profitability figure would equal the full billed amount and is
	// suppressed rather than shown as guaranteed profit.
	InsufficientData bool                   `json:"insufficient_data"`
	Retainer         *RetainerPeriodSummary `json:"retainer,omitempty"`
}

// RetainerPeriodSummary describes the retainer cycle containing the
// evaluation instant.
type RetainerPeriodSummary struct {
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	PeriodIndex     int             `json:"period_index"`
	EffectiveAmount decimal.Decimal `json:"effective_amount"`
	RolloverCredit  decimal.Decimal `json:"rollover_credit"`
	AvailableValue  decimal.Decimal `json:"available_value"`
	PeriodProjected decimal.Decimal `json:"period_projected"`
	// Expired means retainerAutoRenew is off and the first period has ended;
	// no further billing value accrues. Terminal, not an error.
	Expired bool `json:"expired"`
}

func sumBillableValue(entries []*TimeEntry, from *time.Time, to *time.Time) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, entry := range entries {
		if entry.Billable == nil || !*entry.Billable {
			continue
		}
		if from != nil && entry.WorkDate.Before(*from) {
			continue
		}
		if to != nil && !entry.WorkDate.Before(*to) {
			continue
		}
		total = total.Add(entry.Amount())
		count++
	}
	return total, count
}

// RetainerAmountAsOf reconstructs the retainer amount at an instant from the
// RetainerAmountChanged ledger rows alone. Rows after the instant are walked
// backwards through their previous-amount snapshots, so the answer never
// depends on the mutable case field.
func RetainerAmountAsOf(current decimal.Decimal, ledger []*CaseBillingHistory, asOf time.Time) decimal.Decimal {
	changes := make([]*CaseBillingHistory, 0)
	for _, row := range ledger {
		if row.EventType == BillingEventRetainerAmountChanged {
			changes = append(changes, row)
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].CreatedAt.Equal(changes[j].CreatedAt) {
			return changes[i].ID < changes[j].ID
		}
		return changes[i].CreatedAt.Before(changes[j].CreatedAt)
	})

	amount := current
	for i := len(changes) - 1; i >= 0; i-- {
		if !changes[i].CreatedAt.After(asOf) {
			if changes[i].NewAmount != nil {
				return *changes[i].NewAmount
			}
			return amount
		}
		if changes[i].PreviousAmount != nil {
			amount = *changes[i].PreviousAmount
		}
	}
	return amount
}

// retainerPeriodWindow finds the cycle containing now, stepping whole
// calendar months from the anchor date.
func retainerPeriodWindow(anchor time.Time, months int, now time.Time) (start time.Time, end time.Time, index int) {
	start = anchor
	end = anchor.AddDate(0, months, 0)
	for !now.Before(end) {
		start = end
		end = end.AddDate(0, months, 0)
		index++
	}
	return start, end, index
}

// ComputeCaseFinancials is a pure function of its inputs: calling it twice
// with the same case, entries and ledger yields the same result.
func ComputeCaseFinancials(kase *Case, entries []*TimeEntry, ledger []*CaseBillingHistory, now time.Time) (*CaseFinancials, error) {

	projected, billableCount := sumBillableValue(entries, nil, nil)

	result := CaseFinancials{
		CaseId:             kase.ID,
		BillingType:        kase.BillingType,
		ProjectedValue:     projected,
		BillableEntryCount: billableCount,
	}

	switch kase.BillingType {
	case BillingTypeHourly:
		// hourly bills exactly what is worked; profitability is not a thing
		result.BilledValue = projected

	case BillingTypeFixed:
		if kase.FixedAmount == nil {
			return nil, utils.NewValidationError("fixed case %d has no fixed amount", kase.ID)
		}
		result.BilledValue = *kase.FixedAmount
		if billableCount == 0 {
			result.InsufficientData = true
		} else {
			profitability := result.BilledValue.Sub(projected)
			result.Profitability = &profitability
		}

	case BillingTypeRetainer:
		if kase.RetainerAmount == nil || kase.RetainerPeriod == nil || kase.RetainerStartDate == nil {
			return nil, utils.NewValidationError("retainer case %d has an incomplete retainer configuration", kase.ID)
		}
		months := kase.RetainerPeriod.Months()
		// a zero-month period would stall the window walk below; reject
		// corrupt rows instead of hanging the request
		if months <= 0 {
			return nil, utils.NewValidationError("retainer case %d has an invalid retainer period %q", kase.ID, *kase.RetainerPeriod)
		}
		anchor := *kase.RetainerStartDate
		if now.Before(anchor) {
			return nil, utils.NewValidationError("retainer case %d has not started yet", kase.ID)
		}

		autoRenew := kase.RetainerAutoRenew != nil && *kase.RetainerAutoRenew
		firstPeriodEnd := anchor.AddDate(0, months, 0)
		if !autoRenew && !now.Before(firstPeriodEnd) {
			result.Retainer = &RetainerPeriodSummary{
				PeriodStart: anchor,
				PeriodEnd:   firstPeriodEnd,
				Expired:     true,
			}
			result.InsufficientData = billableCount == 0
			break
		}

		periodStart, periodEnd, periodIndex := retainerPeriodWindow(anchor, months, now)
		effective := RetainerAmountAsOf(*kase.RetainerAmount, ledger, now)
		periodProjected, periodCount := sumBillableValue(entries, &periodStart, &periodEnd)

		rollover := decimal.Zero
		rolloverOn := kase.RetainerRollover != nil && *kase.RetainerRollover
		if rolloverOn && !config.RetainerRolloverDisabled() && periodIndex > 0 {
			priorStart := periodStart.AddDate(0, -months, 0)
			priorEffective := RetainerAmountAsOf(*kase.RetainerAmount, ledger, periodStart.Add(-time.Nanosecond))
			priorProjected, _ := sumBillableValue(entries, &priorStart, &periodStart)
			unused := priorEffective.Sub(priorProjected)
			if unused.IsPositive() {
				rollover = unused
			}
		}

		result.BilledValue = effective
		result.Retainer = &RetainerPeriodSummary{
			PeriodStart:     periodStart,
			PeriodEnd:       periodEnd,
			PeriodIndex:     periodIndex,
			EffectiveAmount: effective,
			RolloverCredit:  rollover,
			AvailableValue:  effective.Add(rollover),
			PeriodProjected: periodProjected,
		}
		if periodCount == 0 {
			result.InsufficientData = true
		} else {
			profitability := effective.Add(rollover).Sub(periodProjected)
			result.Profitability = &profitability
		}

	default:
		return nil, utils.NewValidationError("invalid billing type")
	}

	return &result, nil
}

// ComputeCaseFinancialsById loads the case, its entries and its ledger in one
// read transaction and hands them to the pure calculator.
func ComputeCaseFinancialsById(ctx context.Context, caseId int) (*CaseFinancials, error) {

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	db := config.GetDB()
	var result *CaseFinancials
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var kase Case
		if err := tx.First(&kase, caseId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		entries, err := getTimeEntriesByCase2(tx, firmId, caseId, nil, nil)
		if err != nil {
			return err
		}

		var ledger []*CaseBillingHistory
		if kase.BillingType == BillingTypeRetainer {
			if err := tx.Where("firm_id = ? AND case_id = ?", firmId, caseId).
				Order("created_at ASC, id ASC").Find(&ledger).Error; err != nil {
				return err
			}
		}

		result, err = ComputeCaseFinancials(&kase, entries, ledger, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
