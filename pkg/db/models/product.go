package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/pkg/enums"
)

// Product is the catalog-level record; sellable stock lives on its variants.
type Product struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	Slug           string           `gorm:"column:slug;not null;uniqueIndex:uq_products_slug"`
	Description    *string          `gorm:"column:description"`
	Currency       enums.Currency   `gorm:"column:currency;type:text;not null;default:'VND'"`
	WarrantyMonths int              `gorm:"column:warranty_months;not null;default:12"`
	Active         bool             `gorm:"column:active;not null;default:true"`
	Variants       []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
