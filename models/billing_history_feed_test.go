package models_test

import (
	"testing"
	"time"

	"github.com/meridianlegal/practice_backend/models"
	"github.com/shopspring/decimal"
)

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestBillingEventType_AllowedForBillingType(t *testing.T) {
	if models.BillingEventRetainerAmountChanged.AllowedForBillingType(models.BillingTypeHourly) {
		t.Fatal("retainer event must be rejected for an hourly case")
	}
	if models.BillingEventFixedAmountChanged.AllowedForBillingType(models.BillingTypeRetainer) {
		t.Fatal("fixed event must be rejected for a retainer case")
	}
	if !models.BillingEventFixedAmountChanged.AllowedForBillingType(models.BillingTypeFixed) {
		t.Fatal("fixed event must be allowed for a fixed case")
	}
	for _, et := range []models.BillingEventType{
		models.BillingEventInvoiceCreated,
		models.BillingEventInvoiceCancelled,
		models.BillingEventInvoicePaid,
	} {
		if !et.AllowedForBillingType(models.BillingTypeHourly) {
			t.Fatalf("invoice event %s must be allowed for any billing type", et)
		}
	}
}

func TestBuildBillingFeed_IntactChain(t *testing.T) {
	// newest first, snapshots chaining 4000 -> 5000 -> 6000
	rows := []*models.CaseBillingHistory{
		{ID: 3, EventType: models.BillingEventFixedAmountChanged, PreviousAmount: amount(5000), NewAmount: amount(6000), CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, EventType: models.BillingEventFixedAmountChanged, PreviousAmount: amount(4000), NewAmount: amount(5000), CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 1, EventType: models.BillingEventFixedAmountChanged, PreviousAmount: amount(3000), NewAmount: amount(4000), CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	feed := models.BuildBillingFeed(rows)
	if len(feed) != 3 {
		t.Fatalf("expected 3 feed items, got %d", len(feed))
	}
	for _, item := range feed {
		if item.ChainBroken {
			t.Fatalf("row %d flagged despite intact chain", item.ID)
		}
	}
}

func TestBuildBillingFeed_FlagsBrokenChainWithoutFailing(t *testing.T) {
	// the middle row's previous amount does not match the older row's new
	// amount; the feed must flag it and still return the whole sequence
	rows := []*models.CaseBillingHistory{
		{ID: 3, EventType: models.BillingEventFixedAmountChanged, PreviousAmount: amount(5000), NewAmount: amount(6000), CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, EventType: models.BillingEventFixedAmountChanged, PreviousAmount: amount(9999), NewAmount: amount(5000), CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 1, EventType: models.BillingEventFixedAmountChanged, PreviousAmount: amount(3000), NewAmount: amount(4000), CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	feed := models.BuildBillingFeed(rows)
	if len(feed) != 3 {
		t.Fatalf("expected the whole sequence back, got %d items", len(feed))
	}
	if feed[0].ChainBroken {
		t.Fatal("newest row chains correctly and must not be flagged")
	}
	if !feed[1].ChainBroken {
		t.Fatal("middle row must be flagged")
	}
	if feed[2].ChainBroken {
		t.Fatal("oldest row has no older sibling and must not be flagged")
	}
}

func TestBuildBillingFeed_InvoiceEventsInterleaved(t *testing.T) {
	invoiceId := 7
	rows := []*models.CaseBillingHistory{
		{ID: 3, EventType: models.BillingEventFixedAmountChanged, PreviousAmount: amount(4000), NewAmount: amount(5000), CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, EventType: models.BillingEventInvoiceCreated, Amount: amount(1200), InvoiceId: &invoiceId, CreatedAt: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
		{ID: 1, EventType: models.BillingEventFixedAmountChanged, PreviousAmount: amount(3000), NewAmount: amount(4000), CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	feed := models.BuildBillingFeed(rows)
	// the amount-change chain skips over the invoice event in between
	if feed[0].ChainBroken {
		t.Fatal("chain check must skip interleaved invoice events")
	}
	if feed[1].ChainBroken {
		t.Fatal("invoice events are never chain checked")
	}
}
