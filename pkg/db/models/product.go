package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing. Stock is only ever decremented by checkout,
// and only through a conditional update that keeps it non-negative.
type Product struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID   uuid.UUID        `gorm:"column:category_id;type:uuid;not null;index"`
	Name         string           `gorm:"column:name;not null"`
	Slug         string           `gorm:"column:slug;not null;uniqueIndex"`
	Description  string           `gorm:"column:description"`
	Price        decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	ComparePrice *decimal.Decimal `gorm:"column:compare_price;type:numeric(10,2)"`
	Stock        int              `gorm:"column:stock;not null;default:0"`
	IsFeatured   bool             `gorm:"column:is_featured;not null;default:false"`
	IsNew        bool             `gorm:"column:is_new;not null;default:false"`
	Category     *Category        `gorm:"foreignKey:CategoryID"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
