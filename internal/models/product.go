package models

import "time"

// DateLayout is the calendar date format used by forms and reports.
const DateLayout = "2006-01-02"

// Product represents an inventory item tracked by its expiry date.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	ExpiryDate  time.Time `json:"expiry_date" gorm:"type:date;not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExpiryString formats the expiry date without a time component.
func (p Product) ExpiryString() string {
	return p.ExpiryDate.Format(DateLayout)
}
