package models

import (
	"time"
)

// Interview is one scheduled interview row. The schedule page replaces the
// whole table on save, so rows carry no stable identity beyond the visit.
type Interview struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Company     string     `gorm:"size:255;not null" json:"company"`
	Position    string     `gorm:"size:255;not null" json:"position"`
	Datetime    *time.Time `gorm:"column:datetime" json:"datetime"`
	Preparation bool       `gorm:"default:false" json:"preparation"`
	Completion  bool       `gorm:"default:false" json:"completion"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Interview) TableName() string {
	return "interviews"
}
