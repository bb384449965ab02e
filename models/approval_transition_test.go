package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
)

func pendingApproval(submittedBy int) *models.CaseApproval {
	return &models.CaseApproval{
		ID:          1,
		CaseId:      1,
		SubmittedBy: submittedBy,
		SubmittedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		Status:      models.ApprovalStatusPending,
	}
}

func TestApprove_RoleGate(t *testing.T) {
	now := time.Now()

	for _, role := range []models.UserRole{models.UserRoleAssociate, models.UserRoleParalegal} {
		a := pendingApproval(10)
		if err := a.Approve(20, role, "", now); !utils.IsPermissionError(err) {
			t.Fatalf("role %s must not approve, got %v", role, err)
		}
	}

	for _, role := range []models.UserRole{models.UserRolePartner, models.UserRoleBusinessOwner} {
		a := pendingApproval(10)
		if err := a.Approve(20, role, "looks good", now); err != nil {
			t.Fatalf("role %s approve error: %v", role, err)
		}
		if a.Status != models.ApprovalStatusApproved {
			t.Fatalf("expected Approved, got %s", a.Status)
		}
		if a.ReviewedBy == nil || *a.ReviewedBy != 20 {
			t.Fatal("reviewer not recorded")
		}
	}
}

func TestApprove_SelfReviewForbidden(t *testing.T) {
	a := pendingApproval(10)
	if err := a.Approve(10, models.UserRolePartner, "", time.Now()); !utils.IsPermissionError(err) {
		t.Fatalf("expected PermissionError for self review, got %v", err)
	}
}

func TestApprove_OnlyPending(t *testing.T) {
	a := pendingApproval(10)
	if err := a.Approve(20, models.UserRolePartner, "", time.Now()); err != nil {
		t.Fatalf("approve error: %v", err)
	}
	// a decided record is no longer an approvable record: not found, not 400
	if err := a.Approve(20, models.UserRolePartner, "", time.Now()); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected record-not-found on double approve, got %v", err)
	}
	if err := a.Reject(20, models.UserRolePartner, "too late", time.Now()); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected record-not-found rejecting a decided record, got %v", err)
	}
}

func TestReject_RequiresNote(t *testing.T) {
	a := pendingApproval(10)
	if err := a.Reject(20, models.UserRolePartner, "", time.Now()); !utils.IsValidationError(err) {
		t.Fatalf("expected ValidationError for empty note, got %v", err)
	}
	if err := a.Reject(20, models.UserRolePartner, "missing billing details", time.Now()); err != nil {
		t.Fatalf("reject error: %v", err)
	}
	if a.Status != models.ApprovalStatusRejected {
		t.Fatalf("expected Rejected, got %s", a.Status)
	}
}

func TestResubmit_RevisionCountMonotonic(t *testing.T) {
	a := pendingApproval(10)
	now := time.Now()

	for cycle := 1; cycle <= 5; cycle++ {
		if err := a.Reject(20, models.UserRolePartner, "revise", now); err != nil {
			t.Fatalf("cycle %d reject error: %v", cycle, err)
		}
		before := a.RevisionCount
		if err := a.Resubmit(10, now); err != nil {
			t.Fatalf("cycle %d resubmit error: %v", cycle, err)
		}
		if a.RevisionCount != before+1 {
			t.Fatalf("cycle %d expected revision %d, got %d", cycle, before+1, a.RevisionCount)
		}
		if a.Status != models.ApprovalStatusPending {
			t.Fatalf("cycle %d expected Pending, got %s", cycle, a.Status)
		}
		if a.ReviewedBy != nil || a.ReviewedAt != nil || a.ReviewNote != "" {
			t.Fatalf("cycle %d review fields not cleared", cycle)
		}
	}
	if a.RevisionCount != 5 {
		t.Fatalf("expected revision 5 after 5 cycles, got %d", a.RevisionCount)
	}
}

func TestResubmit_OnlyRejected(t *testing.T) {
	a := pendingApproval(10)
	if err := a.Resubmit(10, time.Now()); !utils.IsValidationError(err) {
		t.Fatalf("expected ValidationError resubmitting a pending approval, got %v", err)
	}
}
