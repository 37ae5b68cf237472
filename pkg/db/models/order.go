package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the admin-editable lifecycle field on an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// IsValid reports whether the status is one of the four known values.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Order is created once per checkout. TotalPrice is frozen at creation;
// only Status mutates afterwards.
type Order struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	Status          OrderStatus     `gorm:"column:status;not null;default:pending"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
	ShippingName    string          `gorm:"column:shipping_name;not null"`
	ShippingAddress string          `gorm:"column:shipping_address;not null"`
	ShippingCity    string          `gorm:"column:shipping_city;not null"`
	ShippingZip     string          `gorm:"column:shipping_zip;not null"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
