package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/printshop/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteStatus is the lifecycle state of one quote version.
type QuoteStatus string

const (
	QuoteStatusDraft        QuoteStatus = "draft"
	QuoteStatusSent         QuoteStatus = "sent"
	QuoteStatusApproved     QuoteStatus = "approved"
	QuoteStatusRejected     QuoteStatus = "rejected"
	QuoteStatusSuperseded   QuoteStatus = "superseded"
	QuoteStatusInProduction QuoteStatus = "in_production"
	QuoteStatusReady        QuoteStatus = "ready"
)

// Valid checks if the status is valid.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft,
		QuoteStatusSent,
		QuoteStatusApproved,
		QuoteStatusRejected,
		QuoteStatusSuperseded,
		QuoteStatusInProduction,
		QuoteStatusReady:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for QuoteStatus.
func (s *QuoteStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = QuoteStatus(v)
	case []byte:
		*s = QuoteStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into QuoteStatus", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for QuoteStatus.
func (s QuoteStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid QuoteStatus: %s", s)
	}
	return string(s), nil
}

// IsTerminal reports whether no further transition is possible.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusRejected || s == QuoteStatusReady || s == QuoteStatusSuperseded
}

// IsEditable reports whether supplier selections may still change.
func (s QuoteStatus) IsEditable() bool {
	return s == QuoteStatusDraft || s == QuoteStatusSent
}

// IsRateable reports whether the customer may rate the deal.
func (s QuoteStatus) IsRateable() bool {
	return s == QuoteStatusApproved || s == QuoteStatusInProduction || s == QuoteStatusReady
}

// superseded is reachable only through revision and is therefore absent here.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:        {QuoteStatusSent},
	QuoteStatusSent:         {QuoteStatusApproved, QuoteStatusRejected},
	QuoteStatusApproved:     {QuoteStatusInProduction},
	QuoteStatusInProduction: {QuoteStatusReady},
}

// CanTransitionTo reports whether a direct status update from s to next is allowed.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses a direct update may move s to.
func (s QuoteStatus) AllowedTransitions() []QuoteStatus {
	return append([]QuoteStatus(nil), quoteTransitions[s]...)
}

// Quote is one version of a customer quote. Revisions form a parent/child chain.
type Quote struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UUID              uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_quotes_uuid" json:"uuid"`
	CustomerID        uint           `gorm:"not null;index:idx_quotes_customer_id" json:"customer_id"`
	Status            QuoteStatus    `gorm:"type:varchar(20);not null;default:'draft';index:idx_quotes_status" json:"status"`
	Version           int            `gorm:"not null;default:1" json:"version"`
	ParentQuoteID     *uint          `gorm:"index:idx_quotes_parent_quote_id" json:"parent_quote_id,omitempty"`
	MarkupPercent     float64        `gorm:"type:numeric(6,2);not null;default:0" json:"markup_percent"`
	TotalSupplierCost float64        `gorm:"type:numeric(14,2);not null;default:0" json:"total_supplier_cost"`
	FinalValue        float64        `gorm:"type:numeric(14,2);not null;default:0" json:"final_value"`
	RejectionReason   *string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	DealRating        *int           `gorm:"check:chk_quotes_deal_rating,deal_rating IS NULL OR (deal_rating BETWEEN 1 AND 10)" json:"deal_rating,omitempty"`
	Notes             *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_quotes_created_at" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Customer *User       `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`
	Parent   *Quote      `gorm:"foreignKey:ParentQuoteID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
	Items    []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Quote) TableName() string {
	return "quotes"
}

// BeforeCreate ensures UUID, version, status and timestamps are set.
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QuoteStatusDraft
	}
	if q.Version == 0 {
		q.Version = 1
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = utils.UTCNow()
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// QuoteFilter represents filter criteria for quote queries
type QuoteFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CustomerID    *uint
	Status        *QuoteStatus
	ParentQuoteID *uint
	ParentIDs     []uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
