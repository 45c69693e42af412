package dbschema

import "time"

// BaseModel is the common primary key and timestamp columns.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
