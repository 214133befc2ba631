package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceModality string

const (
	ModalityInternal ServiceModality = "internal"
	ModalityRemote   ServiceModality = "remote"
	ModalityExternal ServiceModality = "external"
)

func (m ServiceModality) Valid() bool {
	switch m {
	case ModalityInternal, ModalityRemote, ModalityExternal:
		return true
	}
	return false
}

// PricingConfig is a named pricing classification scoped to a service desk.
// Each config owns at most one rate record per delivery modality.
type PricingConfig struct {
	gorm.Model
	ServiceDeskID uint                    `json:"service_desk_id"`
	ServiceDesk   ServiceDesk             `json:"service_desk,omitempty" gorm:"foreignKey:ServiceDeskID"`
	Name          string                  `json:"name"`
	Active        bool                    `json:"active"`
	Modalities    []PricingModalityConfig `json:"modalities,omitempty" gorm:"foreignKey:PricingConfigID"`
}

type PricingModalityConfig struct {
	gorm.Model
	PricingConfigID               uint            `json:"pricing_config_id" gorm:"uniqueIndex:idx_pricing_config_modality"`
	Modality                      ServiceModality `json:"modality" gorm:"uniqueIndex:idx_pricing_config_modality"`
	HourlyRate                    decimal.Decimal `json:"hourly_rate" gorm:"type:numeric(12,2)"`
	MinimumCharge                 decimal.Decimal `json:"minimum_charge" gorm:"type:numeric(12,2)"`
	MinimumChargeThresholdMinutes int             `json:"minimum_charge_threshold_minutes"`
	ChargeExcessPerMinute         bool            `json:"charge_excess_per_minute"`
}
