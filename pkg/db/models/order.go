package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/pkg/enums"
)

// Order is the durable record produced by checkout. Monetary amounts are
// integer cents in the order currency.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	CartID        uuid.UUID           `gorm:"column:cart_id;type:uuid;not null;index"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	Currency      enums.Currency      `gorm:"column:currency;type:text;not null;default:'VND'"`
	SubtotalCents int                 `gorm:"column:subtotal_cents;not null"`
	TotalCents    int                 `gorm:"column:total_cents;not null"`
	// ShippingAddress is a free-form snapshot taken at checkout.
	ShippingAddress string          `gorm:"column:shipping_address;type:text;not null;default:''"`
	GatewayTxnRef   *string         `gorm:"column:gateway_txn_ref;type:text"`
	PaidAt          *time.Time      `gorm:"column:paid_at"`
	CompletedAt     *time.Time      `gorm:"column:completed_at"`
	CancelledAt     *time.Time      `gorm:"column:cancelled_at"`
	Items           []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
