package models_test

import (
	"testing"
	"time"

	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
)

func billableEntry(hours int64, rate int64, workDate time.Time) *models.TimeEntry {
	return &models.TimeEntry{
		CaseId:   1,
		UserId:   1,
		UserRole: models.UserRolePartner,
		WorkDate: workDate,
		Hours:    decimal.NewFromInt(hours),
		Rate:     decimal.NewFromInt(rate),
		Billable: utils.NewTrue(),
	}
}

func TestComputeCaseFinancials_HourlyBillsExactlyWhatIsWorked(t *testing.T) {
	kase := &models.Case{ID: 1, BillingType: models.BillingTypeHourly}
	entries := []*models.TimeEntry{
		billableEntry(3, 450, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
	}

	result, err := models.ComputeCaseFinancials(kase, entries, nil, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeCaseFinancials error: %v", err)
	}
	if !result.BilledValue.Equal(decimal.NewFromInt(1350)) {
		t.Fatalf("expected billed 1350, got %s", result.BilledValue)
	}
	if !result.ProjectedValue.Equal(result.BilledValue) {
		t.Fatalf("hourly billed and projected must match, got %s / %s", result.BilledValue, result.ProjectedValue)
	}
	if result.Profitability != nil {
		t.Fatal("hourly profitability must be nil")
	}
}

func TestComputeCaseFinancials_HourlySkipsNonBillable(t *testing.T) {
	kase := &models.Case{ID: 1, BillingType: models.BillingTypeHourly}
	nonBillable := billableEntry(5, 450, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	nonBillable.Billable = utils.NewFalse()
	entries := []*models.TimeEntry{
		billableEntry(2, 300, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)),
		nonBillable,
	}

	result, err := models.ComputeCaseFinancials(kase, entries, nil, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeCaseFinancials error: %v", err)
	}
	if !result.BilledValue.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected billed 600, got %s", result.BilledValue)
	}
	if result.BillableEntryCount != 1 {
		t.Fatalf("expected 1 billable entry, got %d", result.BillableEntryCount)
	}
}

func TestComputeCaseFinancials_FixedProfitabilitySign(t *testing.T) {
	fixed := decimal.NewFromInt(22000)
	kase := &models.Case{ID: 2, BillingType: models.BillingTypeFixed, FixedAmount: &fixed}
	// 63 partner hours at 450 = 28350 worked value, same currency unit as the
	// fixed amount, so the overrun is 22000 - 28350 = -6350
	entries := []*models.TimeEntry{
		billableEntry(40, 450, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)),
		billableEntry(23, 450, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)),
	}

	result, err := models.ComputeCaseFinancials(kase, entries, nil, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeCaseFinancials error: %v", err)
	}
	if !result.BilledValue.Equal(fixed) {
		t.Fatalf("expected billed %s, got %s", fixed, result.BilledValue)
	}
	if !result.ProjectedValue.Equal(decimal.NewFromInt(28350)) {
		t.Fatalf("expected projected 28350, got %s", result.ProjectedValue)
	}
	if result.Profitability == nil {
		t.Fatal("expected profitability")
	}
	if !result.Profitability.Equal(decimal.NewFromInt(-6350)) {
		t.Fatalf("expected profitability -6350, got %s", result.Profitability)
	}
}

func TestComputeCaseFinancials_FixedNoEntriesIsInsufficientData(t *testing.T) {
	fixed := decimal.NewFromInt(10000)
	kase := &models.Case{ID: 3, BillingType: models.BillingTypeFixed, FixedAmount: &fixed}

	result, err := models.ComputeCaseFinancials(kase, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("ComputeCaseFinancials error: %v", err)
	}
	if !result.InsufficientData {
		t.Fatal("expected insufficient data with zero entries")
	}
	if result.Profitability != nil {
		t.Fatal("profitability must be suppressed with zero entries")
	}
	if !result.ProjectedValue.IsZero() {
		t.Fatalf("expected projected 0, got %s", result.ProjectedValue)
	}
}

func TestComputeCaseFinancials_Idempotent(t *testing.T) {
	fixed := decimal.NewFromInt(22000)
	kase := &models.Case{ID: 2, BillingType: models.BillingTypeFixed, FixedAmount: &fixed}
	entries := []*models.TimeEntry{
		billableEntry(40, 450, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)),
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := models.ComputeCaseFinancials(kase, entries, nil, now)
	if err != nil {
		t.Fatalf("first call error: %v", err)
	}
	second, err := models.ComputeCaseFinancials(kase, entries, nil, now)
	if err != nil {
		t.Fatalf("second call error: %v", err)
	}
	if !first.BilledValue.Equal(second.BilledValue) ||
		!first.ProjectedValue.Equal(second.ProjectedValue) ||
		!first.Profitability.Equal(*second.Profitability) {
		t.Fatal("identical inputs must yield identical output")
	}
}

func retainerCase(amount int64, anchor time.Time, rollover bool, autoRenew bool) *models.Case {
	retainer := decimal.NewFromInt(amount)
	period := models.RetainerPeriodMonthly
	return &models.Case{
		ID:                4,
		BillingType:       models.BillingTypeRetainer,
		RetainerAmount:    &retainer,
		RetainerPeriod:    &period,
		RetainerAutoRenew: &autoRenew,
		RetainerRollover:  &rollover,
		RetainerStartDate: &anchor,
	}
}

func TestComputeCaseFinancials_RetainerRolloverFromLedger(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kase := retainerCase(6000, anchor, true, true)

	// amount was 5000 through January, raised to 6000 on Feb 5
	prev := decimal.NewFromInt(5000)
	next := decimal.NewFromInt(6000)
	ledger := []*models.CaseBillingHistory{
		{
			ID:             1,
			CaseId:         4,
			EventType:      models.BillingEventRetainerAmountChanged,
			PreviousAmount: &prev,
			NewAmount:      &next,
			CreatedAt:      time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC),
		},
	}
	entries := []*models.TimeEntry{
		billableEntry(8, 450, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)), // 3600 in January
		billableEntry(2, 450, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)),  // 900 in February
	}

	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	result, err := models.ComputeCaseFinancials(kase, entries, ledger, now)
	if err != nil {
		t.Fatalf("ComputeCaseFinancials error: %v", err)
	}
	if result.Retainer == nil {
		t.Fatal("expected retainer summary")
	}
	if result.Retainer.PeriodIndex != 1 {
		t.Fatalf("expected period index 1, got %d", result.Retainer.PeriodIndex)
	}
	if !result.Retainer.EffectiveAmount.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("expected effective 6000, got %s", result.Retainer.EffectiveAmount)
	}
	// January ran at 5000 (per the ledger snapshot chain) minus 3600 worked
	if !result.Retainer.RolloverCredit.Equal(decimal.NewFromInt(1400)) {
		t.Fatalf("expected rollover 1400, got %s", result.Retainer.RolloverCredit)
	}
	if !result.Retainer.AvailableValue.Equal(decimal.NewFromInt(7400)) {
		t.Fatalf("expected available 7400, got %s", result.Retainer.AvailableValue)
	}
	if result.Profitability == nil || !result.Profitability.Equal(decimal.NewFromInt(6500)) {
		t.Fatalf("expected profitability 6500, got %v", result.Profitability)
	}
}

func TestComputeCaseFinancials_RetainerRolloverOffMeansNoCarry(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kase := retainerCase(5000, anchor, false, true)
	entries := []*models.TimeEntry{
		billableEntry(2, 450, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)),
		billableEntry(1, 450, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)),
	}

	result, err := models.ComputeCaseFinancials(kase, entries, nil, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeCaseFinancials error: %v", err)
	}
	if !result.Retainer.RolloverCredit.IsZero() {
		t.Fatalf("expected no rollover, got %s", result.Retainer.RolloverCredit)
	}
}

func TestComputeCaseFinancials_RetainerNoAutoRenewExpires(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kase := retainerCase(5000, anchor, false, false)

	result, err := models.ComputeCaseFinancials(kase, nil, nil, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeCaseFinancials error: %v", err)
	}
	if result.Retainer == nil || !result.Retainer.Expired {
		t.Fatal("expected expired retainer cycle")
	}
	if !result.BilledValue.IsZero() {
		t.Fatalf("no billing value accrues after an expired cycle, got %s", result.BilledValue)
	}
}

func TestComputeCaseFinancials_RejectsCorruptRetainerPeriod(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kase := retainerCase(5000, anchor, false, true)
	// a period outside the enum steps zero months; the calculator must
	// reject the row instead of walking the window forever
	bad := models.RetainerPeriod("Weekly")
	kase.RetainerPeriod = &bad

	done := make(chan error, 1)
	go func() {
		_, err := models.ComputeCaseFinancials(kase, nil, nil, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
		done <- err
	}()
	select {
	case err := <-done:
		if !utils.IsValidationError(err) {
			t.Fatalf("expected ValidationError for corrupt period, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("calculator did not return for a corrupt retainer period")
	}
}

func TestRetainerAmountAsOf_WalksSnapshotChain(t *testing.T) {
	prev1 := decimal.NewFromInt(4000)
	next1 := decimal.NewFromInt(5000)
	prev2 := decimal.NewFromInt(5000)
	next2 := decimal.NewFromInt(6000)
	ledger := []*models.CaseBillingHistory{
		{ID: 1, EventType: models.BillingEventRetainerAmountChanged, PreviousAmount: &prev1, NewAmount: &next1, CreatedAt: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)},
		{ID: 2, EventType: models.BillingEventRetainerAmountChanged, PreviousAmount: &prev2, NewAmount: &next2, CreatedAt: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)},
	}
	current := decimal.NewFromInt(6000)

	cases := []struct {
		asOf     time.Time
		expected int64
	}{
		{time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 4000},
		{time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC), 5000},
		{time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), 6000},
	}
	for _, tc := range cases {
		got := models.RetainerAmountAsOf(current, ledger, tc.asOf)
		if !got.Equal(decimal.NewFromInt(tc.expected)) {
			t.Fatalf("RetainerAmountAsOf(%s) expected %d, got %s", tc.asOf, tc.expected, got)
		}
	}
}
