package models_test

import (
	"testing"

	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/shopspring/decimal"
)

func TestQuantizeHours_RoundsToQuarterHours(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"1", "1"},
		{"0.25", "0.25"},
		{"1.1", "1"},
		{"1.13", "1.25"},
		{"1.37", "1.25"},
		{"1.38", "1.5"},
		{"2.9", "3"},
		{"0.13", "0.25"},
	}
	for _, tc := range cases {
		in, _ := decimal.NewFromString(tc.in)
		got, err := models.QuantizeHours(in)
		if err != nil {
			t.Fatalf("QuantizeHours(%s) error: %v", tc.in, err)
		}
		if got.String() != tc.expected {
			t.Fatalf("QuantizeHours(%s) expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestQuantizeHours_RejectsNonPositive(t *testing.T) {
	for _, in := range []string{"0", "-1", "0.1"} {
		d, _ := decimal.NewFromString(in)
		if _, err := models.QuantizeHours(d); !utils.IsValidationError(err) {
			t.Fatalf("QuantizeHours(%s) expected ValidationError, got %v", in, err)
		}
	}
}

func TestTimeEntryAmount_UsesPersistedRate(t *testing.T) {
	entry := &models.TimeEntry{
		Hours: decimal.NewFromFloat(2.5),
		Rate:  decimal.NewFromInt(300),
	}
	if !entry.Amount().Equal(decimal.NewFromInt(750)) {
		t.Fatalf("expected 750, got %s", entry.Amount())
	}
}
