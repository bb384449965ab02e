package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AcquireCaseBillingLock serializes billing mutations per case across
// instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will run the billing transaction.
func AcquireCaseBillingLock(tx *gorm.DB, firmId string, caseId int) error {
	lockName := fmt.Sprintf("billing:%s:%d", firmId, caseId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire billing lock for case_id=%d", caseId)
	}
	return nil
}

func ReleaseCaseBillingLock(tx *gorm.DB, firmId string, caseId int) {
	lockName := fmt.Sprintf("billing:%s:%d", firmId, caseId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}
