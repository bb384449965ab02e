package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// History is the generic audit row: one record per mutation with the
// before/after snapshots as JSON. The billing ledger is the financial record;
// this table answers "who changed what, when".
type History struct {
	ID           int       `gorm:"primary_key" json:"id"`
	FirmId       string    `gorm:"index;not null" json:"firm_id"`
	ResourceType string    `gorm:"size:100;index:idx_histories_resource" json:"resource_type"`
	ResourceId   int       `gorm:"index:idx_histories_resource" json:"resource_id"`
	Action       string    `gorm:"size:20" json:"action"`
	Before       string    `gorm:"type:json" json:"before"`
	After        string    `gorm:"type:json" json:"after"`
	Description  string    `gorm:"size:500" json:"description"`
	UserId       int       `json:"user_id"`
	UserName     string    `gorm:"size:255" json:"user_name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func resourceTypeOf(value interface{}) string {
	name := fmt.Sprintf("%T", value)
	name = strings.TrimPrefix(name, "*")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return schema.NamingStrategy{}.TableName(name)
}

func saveHistory(tx *gorm.DB, action string, resourceId int, before interface{}, after interface{}, description string) error {
	ctx := tx.Statement.Context
	firmId, _ := utils.GetFirmIdFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)

	resourceType := ""
	beforeJson := ""
	afterJson := ""
	if before != nil {
		resourceType = resourceTypeOf(before)
		b, err := json.Marshal(before)
		if err != nil {
			return err
		}
		beforeJson = string(b)
	}
	if after != nil {
		resourceType = resourceTypeOf(after)
		b, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJson = string(b)
	}

	history := History{
		FirmId:       firmId,
		ResourceType: resourceType,
		ResourceId:   resourceId,
		Action:       action,
		Before:       beforeJson,
		After:        afterJson,
		Description:  description,
		UserId:       userId,
		UserName:     userName,
	}
	return tx.Create(&history).Error
}

func SaveHistoryCreate(tx *gorm.DB, resourceId int, after interface{}, description string) error {
	return saveHistory(tx, "create", resourceId, nil, after, description)
}

func SaveHistoryUpdate(tx *gorm.DB, resourceId int, before interface{}, after interface{}, description string) error {
	return saveHistory(tx, "update", resourceId, before, after, description)
}

func GetHistories(ctx context.Context, resourceType string, resourceId int) ([]*History, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}

	db := config.GetDB()
	var results []*History
	err := db.WithContext(ctx).
		Where("firm_id = ? AND resource_type = ? AND resource_id = ?", firmId, resourceType, resourceId).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
