package models

import (
	"context"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"gorm.io/gorm"
)

// Client is the thin party record a case can belong to. Full client CRUD
// lives in the surrounding practice-management layer; the billing core only
// needs the row to exist.
type Client struct {
	ID        int       `gorm:"primary_key" json:"id"`
	FirmId    string    `gorm:"index;not null" json:"firm_id" binding:"required"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetClient(ctx context.Context, id int) (*Client, error) {
	db := config.GetDB()
	var client Client
	if err := db.WithContext(ctx).First(&client, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &client, nil
}
