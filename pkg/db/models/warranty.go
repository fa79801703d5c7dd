package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/pkg/enums"
)

// Warranty is issued once per order line item. The unique index on
// order_line_item_id is the backstop that keeps re-issuance idempotent even
// under concurrent completion handling.
type Warranty struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	OrderLineItemID uuid.UUID            `gorm:"column:order_line_item_id;type:uuid;not null;uniqueIndex:uq_warranties_order_line_item_id"`
	CustomerID      uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	ProductID       uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	VariantID       uuid.UUID            `gorm:"column:variant_id;type:uuid;not null"`
	Status          enums.WarrantyStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Months          int                  `gorm:"column:months;not null"`
	StartAt         time.Time            `gorm:"column:start_at;not null"`
	EndAt           time.Time            `gorm:"column:end_at;not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *Warranty) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
