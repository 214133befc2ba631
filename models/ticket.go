package models

import "gorm.io/gorm"

// ServiceDesk is the scope anchor for pricing configurations and tickets.
type ServiceDesk struct {
	gorm.Model
	Name string `json:"name"`
}

type Ticket struct {
	gorm.Model
	ServiceDeskID uint        `json:"service_desk_id" gorm:"index"`
	ServiceDesk   ServiceDesk `json:"service_desk,omitempty" gorm:"foreignKey:ServiceDeskID"`
	ClientName    string      `json:"client_name"`
	Title         string      `json:"title"`
	Status        string      `json:"status"`
}

// Contract may pin a pricing configuration; when it does, contract-covered
// appointments resolve against that configuration only.
type Contract struct {
	gorm.Model
	ServiceDeskID   uint           `json:"service_desk_id" gorm:"index"`
	ServiceDesk     ServiceDesk    `json:"service_desk,omitempty" gorm:"foreignKey:ServiceDeskID"`
	Description     string         `json:"description"`
	Active          bool           `json:"active"`
	PricingConfigID *uint          `json:"pricing_config_id"`
	PricingConfig   *PricingConfig `json:"pricing_config,omitempty" gorm:"foreignKey:PricingConfigID"`
}
