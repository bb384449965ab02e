package utils

import (
	"context"
	"reflect"

	"github.com/meridianlegal/practice_backend/config"
)

// check if id exists, using ctx's firm_id in WHERE, returns RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, firmId string, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, firmId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, firmId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, firmId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, firmId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return NewValidationError("duplicate %s", column)
	}
	return nil
}

// count records, using WHERE firm_id = ? AND $condition
// firm_id can be blank for admin user
func ResourceCountWhere[T any](ctx context.Context, firmId string, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if firmId != "" {
		dbCtx = dbCtx.Where("firm_id = ?", firmId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
