package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AppointmentType string

const (
	TypeService  AppointmentType = "service"
	TypeTravel   AppointmentType = "travel"
	TypeMeeting  AppointmentType = "meeting"
	TypeAnalysis AppointmentType = "analysis"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case TypeService, TypeTravel, TypeMeeting, TypeAnalysis:
		return true
	}
	return false
}

type CoverageType string

const (
	CoverageContract CoverageType = "contract"
	CoverageWarranty CoverageType = "warranty"
	CoverageBillable CoverageType = "billable"
	CoverageInternal CoverageType = "internal"
)

func (c CoverageType) Valid() bool {
	switch c {
	case CoverageContract, CoverageWarranty, CoverageBillable, CoverageInternal:
		return true
	}
	return false
}

// Appointment is one timed, billable unit of technician work attached to a
// ticket. It is created Running when a timer starts and transitions exactly
// once, on stop, to Finalized; pricing fields are populated at that point and
// never change afterwards (approval stamps excepted).
type Appointment struct {
	gorm.Model
	TicketID     uint   `json:"ticket_id" gorm:"index"`
	Ticket       Ticket `json:"ticket,omitempty" gorm:"foreignKey:TicketID"`
	TechnicianID uint   `json:"technician_id" gorm:"index"`
	Technician   User   `json:"technician,omitempty" gorm:"foreignKey:TechnicianID"`

	Type AppointmentType `json:"type"`

	AppointmentDate time.Time  `json:"appointment_date"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes int        `json:"duration_minutes"`

	CoverageType    *CoverageType    `json:"coverage_type"`
	ServiceModality *ServiceModality `json:"service_modality"`
	ContractID      *uint            `json:"contract_id"`

	PricingConfigID     *uint            `json:"pricing_config_id"`
	UnitPrice           decimal.Decimal  `json:"unit_price" gorm:"type:numeric(12,2)"`
	TotalAmount         decimal.Decimal  `json:"total_amount" gorm:"type:numeric(12,2)"`
	ManualPriceOverride bool             `json:"manual_price_override"`
	ManualUnitPrice     *decimal.Decimal `json:"manual_unit_price" gorm:"type:numeric(12,2)"`
	IsWarranty          bool             `json:"is_warranty"`

	TimerStartedAt time.Time  `json:"timer_started_at"`
	TimerStoppedAt *time.Time `json:"timer_stopped_at"`

	ApprovedBy *uint      `json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`
}

// Running reports whether the timer is still open.
func (a *Appointment) Running() bool {
	return a.TimerStoppedAt == nil
}
