package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/utils"
	"gorm.io/gorm"
)

type Firm struct {
	ID           string    `gorm:"type:varchar(36);primary_key" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Phone        string    `gorm:"size:50" json:"phone"`
	CountryCode  string    `gorm:"size:5;default:'DE'" json:"country_code"`
	Timezone     string    `gorm:"size:100;default:'Europe/Berlin'" json:"timezone"`
	DefaultRates RateCard  `gorm:"type:json;not null" json:"default_rates"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFirm struct {
	Name         string   `json:"name" binding:"required"`
	Phone        string   `json:"phone"`
	CountryCode  string   `json:"country_code"`
	Timezone     string   `json:"timezone"`
	DefaultRates RateCard `json:"default_rates" binding:"required"`
}

func (f *Firm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

func CreateFirm(ctx context.Context, input *NewFirm) (*Firm, error) {

	if err := input.DefaultRates.ValidateComplete(); err != nil {
		return nil, err
	}
	if input.Phone != "" {
		countryCode := input.CountryCode
		if countryCode == "" {
			countryCode = "DE"
		}
		if err := utils.ValidatePhoneNumber(input.Phone, countryCode); err != nil {
			return nil, err
		}
	}

	firm := Firm{
		Name:         input.Name,
		Phone:        input.Phone,
		CountryCode:  input.CountryCode,
		Timezone:     input.Timezone,
		DefaultRates: input.DefaultRates,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&firm).Error; err != nil {
		return nil, err
	}
	return &firm, nil
}

// redis first, then db; firms rarely change so the cache is long-lived
func GetFirmById(ctx context.Context, firmId string) (*Firm, error) {
	var firm Firm
	exists, err := config.GetRedisObject("Firm:"+firmId, &firm)
	if err != nil {
		return nil, err
	}
	if exists {
		return &firm, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", firmId).First(&firm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := config.SetRedisObject("Firm:"+firmId, &firm, 0); err != nil {
		return nil, err
	}
	return &firm, nil
}

// same lookup but inside an open transaction, skipping the cache
func GetFirmById2(tx *gorm.DB, firmId string) (*Firm, error) {
	var firm Firm
	if err := tx.Where("id = ?", firmId).First(&firm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &firm, nil
}

// UpdateFirmDefaultRates replaces the firm-level rate card. The card must stay
// complete; existing time entries keep the rate they were created with.
func UpdateFirmDefaultRates(ctx context.Context, rates RateCard) (*Firm, error) {

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, utils.NewValidationError("firm id is required")
	}
	if err := rates.ValidateComplete(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var firm Firm
	if err := db.WithContext(ctx).Where("id = ?", firmId).First(&firm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	firm.DefaultRates = rates
	if err := db.WithContext(ctx).Model(&firm).Update("default_rates", rates).Error; err != nil {
		return nil, err
	}
	if err := config.RemoveRedisKey("Firm:" + firmId); err != nil {
		return nil, err
	}
	return &firm, nil
}
