package models

import "time"

// OrderNoteModel is an append-only audit row; nothing updates or deletes it.
type OrderNoteModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   int64     `gorm:"index;not null"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (OrderNoteModel) TableName() string {
	return "order_notes"
}
