package models

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CaseApproval is the review record for a case opened by an associate or
// paralegal. One row per case; rejection and resubmission reuse the row and
// bump RevisionCount, so the counter only ever grows.
type CaseApproval struct {
	ID            int            `gorm:"primary_key" json:"id"`
	FirmId        string         `gorm:"index;not null" json:"firm_id" binding:"required"`
	CaseId        int            `gorm:"uniqueIndex;not null" json:"case_id" binding:"required"`
	SubmittedBy   int            `gorm:"not null" json:"submitted_by"`
	SubmittedAt   time.Time      `gorm:"not null" json:"submitted_at"`
	Status        ApprovalStatus `gorm:"type:enum('Pending','Approved','Rejected');not null;default:'Pending'" json:"status"`
	ReviewedBy    *int           `json:"reviewed_by"`
	ReviewedAt    *time.Time     `json:"reviewed_at"`
	ReviewNote    string         `gorm:"size:500" json:"review_note"`
	RevisionCount int            `gorm:"not null;default:0" json:"revision_count"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Approve moves Pending -> Approved. Reviewing your own submission is not
// allowed regardless of role.
func (a *CaseApproval) Approve(reviewerId int, reviewerRole UserRole, note string, now time.Time) error {
	// a non-pending record is not an approvable record: same answer as no
	// record at all
	if a.Status != ApprovalStatusPending {
		return utils.ErrorRecordNotFound
	}
	if !reviewerRole.CanReviewApprovals() {
		return utils.NewPermissionError("role %s cannot review case approvals", reviewerRole)
	}
	if reviewerId == a.SubmittedBy {
		return utils.NewPermissionError("cannot review your own submission")
	}
	a.Status = ApprovalStatusApproved
	a.ReviewedBy = &reviewerId
	a.ReviewedAt = &now
	a.ReviewNote = note
	return nil
}

// Reject moves Pending -> Rejected. A rejection always carries a note so the
// submitter knows what to fix.
func (a *CaseApproval) Reject(reviewerId int, reviewerRole UserRole, note string, now time.Time) error {
	if a.Status != ApprovalStatusPending {
		return utils.ErrorRecordNotFound
	}
	if !reviewerRole.CanReviewApprovals() {
		return utils.NewPermissionError("role %s cannot review case approvals", reviewerRole)
	}
	if reviewerId == a.SubmittedBy {
		return utils.NewPermissionError("cannot review your own submission")
	}
	if note == "" {
		return utils.NewValidationError("a rejection requires a review note")
	}
	a.Status = ApprovalStatusRejected
	a.ReviewedBy = &reviewerId
	a.ReviewedAt = &now
	a.ReviewNote = note
	return nil
}

// Resubmit moves Rejected -> Pending and bumps the revision counter. The
// previous review fields are cleared; the note survives in the history table.
func (a *CaseApproval) Resubmit(submitterId int, now time.Time) error {
	if a.Status != ApprovalStatusRejected {
		return utils.NewValidationError("approval is %s, only rejected approvals can be resubmitted", a.Status)
	}
	a.Status = ApprovalStatusPending
	a.SubmittedBy = submitterId
	a.SubmittedAt = now
	a.ReviewedBy = nil
	a.ReviewedAt = nil
	a.ReviewNote = ""
	a.RevisionCount++
	return nil
}

func GetApprovalByCase(ctx context.Context, caseId int) (*CaseApproval, error) {
	db := config.GetDB()
	var approval CaseApproval
	if err := db.WithContext(ctx).Where("case_id = ?", caseId).First(&approval).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &approval, nil
}

// row-locked variant for the review workflow
func GetApprovalByCaseForUpdate(tx *gorm.DB, caseId int) (*CaseApproval, error) {
	var approval CaseApproval
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("case_id = ?", caseId).First(&approval).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &approval, nil
}

func GetPendingApprovals(ctx context.Context) ([]*CaseApproval, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	db := config.GetDB()
	var results []*CaseApproval
	err := db.WithContext(ctx).
		Where("firm_id = ? AND status = ?", firmId, ApprovalStatusPending).
		Order("submitted_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
