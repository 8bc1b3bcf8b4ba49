package model

import "time"

// Task represents a single to-do item. UserID and CategoryID are enforced
// by foreign keys; rows they point to cannot be deleted while referenced.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	CategoryID  uint      `gorm:"not null;index" json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	User     *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Category *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
