package models

import (
	"time"
)

// Delivery tracks one job application: where it went, when, and how far it
// got. The composite unique index rejects exact duplicates.
type Delivery struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyName  string    `gorm:"column:company_name;size:255;not null;uniqueIndex:uniq_delivery" json:"company_name"`
	DeliveryDate time.Time `gorm:"column:delivery_date;not null;uniqueIndex:uniq_delivery" json:"delivery_date"`
	Status       string    `gorm:"size:100;not null;uniqueIndex:uniq_delivery" json:"status"`
}

func (Delivery) TableName() string {
	return "deliveries"
}
