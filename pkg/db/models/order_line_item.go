package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderLineItem snapshots variant, name, and price at checkout time so later
// catalog edits cannot change what the customer bought.
type OrderLineItem struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID         uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID         uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	NameSnapshot      string    `gorm:"column:name_snapshot;not null"`
	UnitPriceCents    int       `gorm:"column:unit_price_cents;not null"`
	Quantity          int       `gorm:"column:quantity;not null"`
	LineSubtotalCents int       `gorm:"column:line_subtotal_cents;not null"`
	WarrantyMonths    int       `gorm:"column:warranty_months;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *OrderLineItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
