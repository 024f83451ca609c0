package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/printshop/utils"
	"gorm.io/gorm"
)

// SupplierJobStatus tracks production progress at the supplier.
type SupplierJobStatus string

const (
	SupplierJobStatusPending    SupplierJobStatus = "pending"
	SupplierJobStatusInProgress SupplierJobStatus = "in_progress"
	SupplierJobStatusReady      SupplierJobStatus = "ready"
	SupplierJobStatusPickedUp   SupplierJobStatus = "picked_up"
	SupplierJobStatusDelivered  SupplierJobStatus = "delivered"
	SupplierJobStatusCancelled  SupplierJobStatus = "cancelled"
)

// Valid checks if the status is valid.
func (s SupplierJobStatus) Valid() bool {
	switch s {
	case SupplierJobStatusPending,
		SupplierJobStatusInProgress,
		SupplierJobStatusReady,
		SupplierJobStatusPickedUp,
		SupplierJobStatusDelivered,
		SupplierJobStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for SupplierJobStatus.
func (s *SupplierJobStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = SupplierJobStatus(v)
	case []byte:
		*s = SupplierJobStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SupplierJobStatus", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for SupplierJobStatus.
func (s SupplierJobStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid SupplierJobStatus: %s", s)
	}
	return string(s), nil
}

// IsCompleted reports whether the job counts as completed work for the supplier.
func (s SupplierJobStatus) IsCompleted() bool {
	return s == SupplierJobStatusReady || s == SupplierJobStatusPickedUp || s == SupplierJobStatusDelivered
}

// IsOpen reports whether the job still occupies supplier capacity.
func (s SupplierJobStatus) IsOpen() bool {
	return s == SupplierJobStatusPending || s == SupplierJobStatusInProgress
}

var supplierJobTransitions = map[SupplierJobStatus][]SupplierJobStatus{
	SupplierJobStatusPending:    {SupplierJobStatusInProgress, SupplierJobStatusCancelled},
	SupplierJobStatusInProgress: {SupplierJobStatusReady, SupplierJobStatusCancelled},
	SupplierJobStatusReady:      {SupplierJobStatusPickedUp},
	SupplierJobStatusPickedUp:   {SupplierJobStatusDelivered},
}

// CanTransitionTo reports whether the job may move from s to next.
func (s SupplierJobStatus) CanTransitionTo(next SupplierJobStatus) bool {
	for _, allowed := range supplierJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SupplierJob is a historical production record used to derive supplier metrics.
type SupplierJob struct {
	ID                    uint              `gorm:"primaryKey" json:"id"`
	SupplierID            uint              `gorm:"not null;index:idx_supplier_jobs_supplier_id" json:"supplier_id"`
	CustomerID            *uint             `gorm:"index:idx_supplier_jobs_customer_id" json:"customer_id,omitempty"`
	ProductUnitID         uint              `gorm:"not null;index:idx_supplier_jobs_product_unit_id" json:"product_unit_id"`
	QuoteID               *uint             `gorm:"index:idx_supplier_jobs_quote_id" json:"quote_id,omitempty"`
	QuoteItemID           *uint             `gorm:"uniqueIndex:uk_supplier_jobs_quote_item_id" json:"quote_item_id,omitempty"`
	Quantity              int               `gorm:"not null;default:1" json:"quantity"`
	Price                 float64           `gorm:"type:numeric(14,2);not null;default:0" json:"price"`
	Status                SupplierJobStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_supplier_jobs_status" json:"status"`
	PromisedDeliveryDays  *int              `json:"promised_delivery_days,omitempty"`
	ReadyAt               *time.Time        `json:"ready_at,omitempty"`
	CourierConfirmedReady *bool             `gorm:"not null;default:false" json:"courier_confirmed_ready"`
	CourierConfirmedAt    *time.Time        `json:"courier_confirmed_at,omitempty"`
	Rating                *int              `gorm:"check:chk_supplier_jobs_rating,rating IS NULL OR (rating BETWEEN 1 AND 10)" json:"rating,omitempty"`
	CreatedAt             time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_supplier_jobs_created_at" json:"created_at"`
	UpdatedAt             time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Supplier    *User        `gorm:"foreignKey:SupplierID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	ProductUnit *ProductUnit `gorm:"foreignKey:ProductUnitID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (SupplierJob) TableName() string {
	return "supplier_jobs"
}

// BeforeCreate ensures defaults and timestamps are set.
func (j *SupplierJob) BeforeCreate(tx *gorm.DB) error {
	if j.Status == "" {
		j.Status = SupplierJobStatusPending
	}
	if j.CourierConfirmedReady == nil {
		j.CourierConfirmedReady = utils.ToPtr(false)
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = utils.UTCNow()
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// ActualDays returns the elapsed whole-or-fractional days between creation and readiness.
func (j *SupplierJob) ActualDays() (float64, bool) {
	if j.ReadyAt == nil {
		return 0, false
	}
	return j.ReadyAt.Sub(j.CreatedAt).Hours() / 24, true
}

// SupplierJobFilter represents filter criteria for supplier job queries
type SupplierJobFilter struct {
	ID             *uint
	SupplierID     *uint
	QuoteID        *uint
	QuoteItemID    *uint
	ProductUnitIDs []uint
	Status         *SupplierJobStatus
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
}
