package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Employee struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID   snowflake.ID `gorm:"not null;index" json:"store_id"`
	Name      string       `gorm:"not null" json:"name"`
	Email     string       `gorm:"index" json:"email,omitempty"`
	Role      string       `json:"role,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Employee) TableName() string { return "employees" }
