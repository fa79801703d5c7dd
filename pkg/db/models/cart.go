package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/pkg/enums"
)

// Cart holds the customer's pending selection until checkout converts it.
type Cart struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID uuid.UUID        `gorm:"column:customer_id;type:uuid;not null;index"`
	Status     enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Lines      []CartLine       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
