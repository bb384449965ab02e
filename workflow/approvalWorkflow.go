package workflow

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"gorm.io/gorm"
)

func actorFromContext(ctx context.Context) (firmId string, userId int, role models.UserRole, err error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return "", 0, "", utils.NewValidationError("firm id is required")
	}
	userId, ok = utils.GetUserIdFromContext(ctx)
	if !ok {
		return "", 0, "", utils.NewValidationError("user id is required")
	}
	roleStr, _ := utils.GetUserRoleFromContext(ctx)
	return firmId, userId, models.UserRole(roleStr), nil
}

// SubmitCaseForApproval puts a case into the review queue. A rejected case is
// resubmitted on its existing approval row, bumping the revision counter; a
// case with a pending review cannot be submitted twice.
func SubmitCaseForApproval(ctx context.Context, caseId int) (*models.CaseApproval, error) {

	logger := config.GetLogger()

	firmId, userId, _, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var result *models.CaseApproval
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kase, err := models.GetCaseForUpdate(tx, caseId)
		if err != nil {
			return err
		}
		if kase.Status != models.CaseStatusPendingApproval {
			return utils.NewValidationError("case %d is %s, only pending cases can be submitted", caseId, kase.Status)
		}

		approval, err := models.GetApprovalByCaseForUpdate(tx, caseId)
		if err != nil && err != utils.ErrorRecordNotFound {
			return err
		}

		if approval == nil {
			approval = &models.CaseApproval{
				FirmId:      firmId,
				CaseId:      caseId,
				SubmittedBy: userId,
				SubmittedAt: time.Now(),
				Status:      models.ApprovalStatusPending,
			}
			if err := tx.Create(approval).Error; err != nil {
				return err
			}
		} else {
			switch approval.Status {
			case models.ApprovalStatusPending:
				return utils.NewValidationError("case %d already has a pending approval", caseId)
			case models.ApprovalStatusApproved:
				return utils.NewValidationError("case %d is already approved", caseId)
			}
			before := *approval
			if err := approval.Resubmit(userId, time.Now()); err != nil {
				return err
			}
			if err := tx.Save(approval).Error; err != nil {
				return err
			}
			if err := models.SaveHistoryUpdate(tx, approval.ID, &before, approval, "Case resubmitted for approval"); err != nil {
				return err
			}
		}

		result = approval
		return nil
	})
	if err != nil {
		config.LogError(logger, "workflow", "SubmitCaseForApproval", "transaction", caseId, err)
		return nil, classifyTxError(err)
	}
	return result, nil
}

// ApproveCase moves the review record to Approved and the case to Active in
// one transaction. Only partners and owners may review; the submitter may
// never review their own case.
func ApproveCase(ctx context.Context, caseId int, note string) (*models.CaseApproval, error) {

	logger := config.GetLogger()

	_, userId, role, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var result *models.CaseApproval
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kase, err := models.GetCaseForUpdate(tx, caseId)
		if err != nil {
			return err
		}

		approval, err := models.GetApprovalByCaseForUpdate(tx, caseId)
		if err != nil {
			return err
		}

		before := *approval
		if err := approval.Approve(userId, role, note, time.Now()); err != nil {
			return err
		}
		if err := tx.Save(approval).Error; err != nil {
			return err
		}

		if kase.Status == models.CaseStatusPendingApproval {
			if err := tx.Model(kase).Update("status", models.CaseStatusActive).Error; err != nil {
				return err
			}
		}

		result = approval
		return models.SaveHistoryUpdate(tx, approval.ID, &before, approval, "Case approved")
	})
	if err != nil {
		config.LogError(logger, "workflow", "ApproveCase", "transaction", caseId, err)
		return nil, classifyTxError(err)
	}
	return result, nil
}

// RejectCase records the rejection with its note. The case itself stays in
// PendingApproval so the submitter can revise and resubmit.
func RejectCase(ctx context.Context, caseId int, reason string) (*models.CaseApproval, error) {

	logger := config.GetLogger()

	_, userId, role, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var result *models.CaseApproval
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		approval, err := models.GetApprovalByCaseForUpdate(tx, caseId)
		if err != nil {
			return err
		}

		before := *approval
		if err := approval.Reject(userId, role, reason, time.Now()); err != nil {
			return err
		}
		if err := tx.Save(approval).Error; err != nil {
			return err
		}

		result = approval
		return models.SaveHistoryUpdate(tx, approval.ID, &before, approval, "Case rejected: "+reason)
	})
	if err != nil {
		config.LogError(logger, "workflow", "RejectCase", "transaction", caseId, err)
		return nil, classifyTxError(err)
	}
	return result, nil
}
